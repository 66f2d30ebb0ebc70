// Package export serializes contact sets to CSV for download. The layout is
// fixed: 26 columns, one row per record, enrichment data JSON-stringified
// into its cell.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

// Columns is the fixed export header.
var Columns = []string{
	"id",
	"email",
	"first_name",
	"last_name",
	"full_name",
	"company",
	"phone",
	"mobile",
	"job_title",
	"department",
	"city",
	"state",
	"country",
	"lead_status",
	"lead_source",
	"is_validated",
	"validation_score",
	"validation_result",
	"validation_status",
	"validated_at",
	"has_enrichment",
	"enriched_linkedin_url",
	"enrichment_data",
	"owner_email",
	"created_at",
	"updated_at",
}

// Write serializes the records as CSV. encoding/csv handles RFC 4180
// quoting, so fields containing commas or quotes come out escaped with
// doubled internal quotes.
func Write(w io.Writer, contacts []entity.Contact) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, contact := range contacts {
		if err := writer.Write(row(contact)); err != nil {
			return fmt.Errorf("write csv row for contact %s: %w", contact.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Filename builds the download name, e.g. contacts_2026-08-28.csv.
func Filename(now time.Time) string {
	return "contacts_" + now.UTC().Format("2006-01-02") + ".csv"
}

func row(c entity.Contact) []string {
	score := ""
	if c.ValidationScore != nil {
		score = strconv.Itoa(*c.ValidationScore)
	}

	enrichment := ""
	if data := c.Enrichment.Object(); data != nil {
		if encoded, err := json.Marshal(data); err == nil {
			enrichment = string(encoded)
		}
	}

	return []string{
		c.ID,
		c.Email,
		c.FirstName,
		c.LastName,
		c.FullName,
		c.Company,
		c.Phone,
		c.Mobile,
		c.JobTitle,
		c.Department,
		c.City,
		c.State,
		c.Country,
		c.LeadStatus,
		c.LeadSource,
		strconv.FormatBool(c.IsValidated),
		score,
		c.ValidationResult,
		c.ValidationStatus,
		c.ValidatedAt,
		strconv.FormatBool(c.HasEnrichment),
		c.EnrichedLinkedInURL,
		enrichment,
		c.OwnerEmail,
		c.CreatedAt,
		c.UpdatedAt,
	}
}
