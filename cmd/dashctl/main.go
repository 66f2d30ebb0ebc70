// Package main provides the dashctl binary, a small operator CLI for the
// contact dashboard API. It talks to the same upstream contact service the
// API proxies, so exports and validation runs work without a running
// dashboard instance.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/xdott/contact-dashboard-api/internal/config"
	"github.com/xdott/contact-dashboard-api/internal/export"
	"github.com/xdott/contact-dashboard-api/internal/query"
	"github.com/xdott/contact-dashboard-api/internal/upstream"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashctl",
		Short: "Operator CLI for the contact dashboard",
		Long: `dashctl talks directly to the upstream contact API configured via
UPSTREAM_BASE_URL. It can export a user's contact list as CSV and run
bulk email validation without going through the dashboard HTTP surface.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(exportCmd())
	cmd.AddCommand(validateCmd())

	return cmd
}

func exportCmd() *cobra.Command {
	var (
		userEmail string
		output    string
		filter    query.Filter
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's contacts as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gateway, err := setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.UpstreamTimeout)
			defer cancel()

			contacts, err := gateway.FetchContacts(ctx, userEmail, cfg.FetchLimit)
			if err != nil {
				return fmt.Errorf("fetch contacts: %w", err)
			}
			contacts = query.Apply(contacts, filter)

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			if err := export.Write(out, contacts); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			fmt.Fprintf(os.Stderr, "exported %d contacts\n", len(contacts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&userEmail, "user", "u", "", "Owner email of the contact list")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Free-text search filter")
	cmd.Flags().StringVar(&filter.Company, "company", "", "Company filter")
	cmd.Flags().StringVar(&filter.JobTitle, "job-title", "", "Job title filter")
	cmd.Flags().StringVar(&filter.Location, "location", "", "Location filter")
	cmd.Flags().StringVar(&filter.LeadStatus, "lead-status", "", "Lead status filter")
	cmd.Flags().StringVar(&filter.LeadSource, "lead-source", "", "Lead source filter")
	cmd.Flags().StringVar(&filter.ValidationStatus, "validation-status", "", "Validation bucket filter")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func validateCmd() *cobra.Command {
	var (
		userEmail  string
		contactIDs []string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run bulk email validation upstream",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(contactIDs) == 0 {
				return fmt.Errorf("either --all or --id is required")
			}

			cfg, gateway, err := setup()
			if err != nil {
				return err
			}

			// Bulk validation can take a while upstream, so allow
			// several upstream timeouts before giving up.
			ctx, cancel := context.WithTimeout(cmd.Context(), 4*cfg.UpstreamTimeout)
			defer cancel()

			summary, err := gateway.ValidateBulk(ctx, userEmail, all, contactIDs)
			if err != nil {
				return fmt.Errorf("bulk validation: %w", err)
			}

			fmt.Printf("processed %d contacts, %d validated successfully\n",
				summary.TotalProcessed, summary.SuccessfulValidations)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userEmail, "user", "u", "", "Owner email of the contact list")
	cmd.Flags().StringSliceVar(&contactIDs, "id", nil, "Contact id to validate (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Validate every contact in the list")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func setup() (*config.Config, *upstream.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	client := &http.Client{Timeout: cfg.UpstreamTimeout}
	return cfg, upstream.New(client, cfg.UpstreamBaseURL), nil
}
