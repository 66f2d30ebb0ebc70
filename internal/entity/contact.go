package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Known lead lifecycle values. lead_status is free-form upstream, so these are
// hints for the UI rather than an enum.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusConverted = "converted"

	DefaultLeadSource = "import"
)

// Contact is a single person record as served by the upstream contact API.
// All fields are optional on the wire; Normalize fills the invariants the
// dashboard relies on (non-empty id, default lead metadata, score bounds).
type Contact struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	FullName   string `json:"full_name"`
	Company    string `json:"company"`
	Phone      string `json:"phone"`
	Mobile     string `json:"mobile"`
	JobTitle   string `json:"job_title"`
	Department string `json:"department"`

	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`

	LeadStatus string `json:"lead_status"`
	LeadSource string `json:"lead_source"`

	IsValidated      bool   `json:"is_validated"`
	ValidationScore  *int   `json:"validation_score"`
	ValidationResult string `json:"validation_result"`
	ValidationStatus string `json:"validation_status"`
	ValidatedAt      string `json:"validated_at"`

	HasEnrichment        bool              `json:"has_enrichment"`
	EnrichedProfileID    string            `json:"enriched_profile_id"`
	EnrichedLinkedInURL  string            `json:"enriched_linkedin_url"`
	EnrichmentAcceptedAt string            `json:"enrichment_accepted_at"`
	Enrichment           EnrichmentPayload `json:"enrichment_data"`

	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	OwnerEmail    string `json:"owner_email"`
	OwnerUsername string `json:"owner_username"`
}

// Normalize enforces the record invariants after decoding an upstream payload:
// a contact without an id gets a locally generated placeholder, lead metadata
// falls back to its defaults, and an out-of-range validation score is clamped
// into [0, 100]. A nil score stays nil; "no score" and "score of zero" must
// remain distinguishable.
func (c *Contact) Normalize() {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = "local-" + uuid.NewString()
	}
	if strings.TrimSpace(c.LeadStatus) == "" {
		c.LeadStatus = LeadStatusNew
	}
	if strings.TrimSpace(c.LeadSource) == "" {
		c.LeadSource = DefaultLeadSource
	}
	if c.ValidationScore != nil {
		if *c.ValidationScore < 0 {
			zero := 0
			c.ValidationScore = &zero
		} else if *c.ValidationScore > 100 {
			hundred := 100
			c.ValidationScore = &hundred
		}
	}
}

// Location joins city, state and country with commas, skipping blanks.
// Used for both display and the location filter.
func (c Contact) Location() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{c.City, c.State, c.Country} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// EnrichedFullName returns the full name from the enrichment payload, or ""
// when there is no usable enrichment.
func (c Contact) EnrichedFullName() string {
	if data := c.Enrichment.Object(); data != nil {
		return data.FullName
	}
	return ""
}

// EnrichedHeadline returns the headline from the enrichment payload, or ""
// when there is no usable enrichment.
func (c Contact) EnrichedHeadline() string {
	if data := c.Enrichment.Object(); data != nil {
		return data.Headline
	}
	return ""
}
