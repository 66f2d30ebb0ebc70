package dto

import "github.com/xdott/contact-dashboard-api/internal/entity"

// UpdateContactRequest is the whole-record edit payload. Callers send the
// complete updated contact, not a field patch.
type UpdateContactRequest struct {
	Contact entity.Contact `json:"contact"`
}

// SelectRequest toggles selection state for a set of contact ids.
type SelectRequest struct {
	ContactIDs []string `json:"contact_ids"`
	Selected   bool     `json:"selected"`
}

// SelectPageRequest applies select-all to the page identified by the embedded
// filter and page number; only the ids on that page are affected.
type SelectPageRequest struct {
	Search           string `json:"search"`
	Company          string `json:"company"`
	JobTitle         string `json:"job_title"`
	Location         string `json:"location"`
	LeadStatus       string `json:"lead_status"`
	LeadSource       string `json:"lead_source"`
	ValidationStatus string `json:"validation_status"`
	Page             int    `json:"page"`
	Selected         bool   `json:"selected"`
}

// BulkValidateRequest scopes a bulk validation run.
type BulkValidateRequest struct {
	ValidateAll bool `json:"validate_all"`
}

// EnrichRequest asks for a LinkedIn enrichment preview or accept.
type EnrichRequest struct {
	LinkedInURL string `json:"linkedin_url"`
}
