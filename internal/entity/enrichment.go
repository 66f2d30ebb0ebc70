package entity

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EnrichmentState classifies what arrived in the enrichment_data field.
type EnrichmentState int

const (
	// EnrichmentAbsent means the field was null, missing or blank.
	EnrichmentAbsent EnrichmentState = iota
	// EnrichmentParsed means a usable object was decoded.
	EnrichmentParsed
	// EnrichmentMalformed means the payload existed but could not be decoded.
	EnrichmentMalformed
)

// EnrichmentData is the decoded LinkedIn enrichment profile attached to a
// contact.
type EnrichmentData struct {
	FullName       string            `json:"full_name,omitempty"`
	Headline       string            `json:"headline,omitempty"`
	LinkedInURL    string            `json:"linkedin_url,omitempty"`
	ProfilePicture string            `json:"profile_picture,omitempty"`
	Socials        map[string]string `json:"socials,omitempty"`
	Company        *EnrichedCompany  `json:"company,omitempty"`
	JobHistory     []JobHistoryEntry `json:"job_history,omitempty"`
	Education      []EducationEntry  `json:"education,omitempty"`
}

// EnrichedCompany is the company block inside an enrichment profile.
type EnrichedCompany struct {
	Name     string `json:"name,omitempty"`
	Website  string `json:"website,omitempty"`
	Industry string `json:"industry,omitempty"`
	Size     string `json:"size,omitempty"`
	Location string `json:"location,omitempty"`
}

// JobHistoryEntry is one position inside an enrichment profile.
type JobHistoryEntry struct {
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Location  string `json:"location,omitempty"`
}

// EducationEntry is one school inside an enrichment profile.
type EducationEntry struct {
	School    string `json:"school,omitempty"`
	Degree    string `json:"degree,omitempty"`
	Field     string `json:"field,omitempty"`
	StartYear string `json:"start_year,omitempty"`
	EndYear   string `json:"end_year,omitempty"`
}

// EnrichmentPayload decodes the enrichment_data field defensively. Upstream
// may deliver an object, a JSON-string-encoded object, a stringified
// placeholder such as "[object Object]", or garbage. Decoding never fails:
// unusable input degrades to the malformed state and downstream consumers see
// it as "no enrichment data".
type EnrichmentPayload struct {
	State  EnrichmentState
	Reason string
	Data   *EnrichmentData
}

// ParseEnrichment classifies and decodes a raw enrichment_data value.
func ParseEnrichment(raw json.RawMessage) EnrichmentPayload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return EnrichmentPayload{State: EnrichmentAbsent}
	}

	switch trimmed[0] {
	case '{':
		var data EnrichmentData
		if err := json.Unmarshal(trimmed, &data); err != nil {
			return EnrichmentPayload{State: EnrichmentMalformed, Reason: "undecodable object: " + err.Error()}
		}
		return EnrichmentPayload{State: EnrichmentParsed, Data: &data}
	case '"':
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return EnrichmentPayload{State: EnrichmentMalformed, Reason: "undecodable string: " + err.Error()}
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return EnrichmentPayload{State: EnrichmentAbsent}
		}
		if inner == "[object Object]" {
			return EnrichmentPayload{State: EnrichmentMalformed, Reason: "stringified object placeholder"}
		}
		var data EnrichmentData
		if err := json.Unmarshal([]byte(inner), &data); err != nil {
			return EnrichmentPayload{State: EnrichmentMalformed, Reason: "string did not contain a JSON object"}
		}
		return EnrichmentPayload{State: EnrichmentParsed, Data: &data}
	default:
		return EnrichmentPayload{State: EnrichmentMalformed, Reason: "unexpected JSON type"}
	}
}

// Object returns the decoded profile, or nil for the absent and malformed
// states. Display code only needs this binary view.
func (p EnrichmentPayload) Object() *EnrichmentData {
	if p.State == EnrichmentParsed {
		return p.Data
	}
	return nil
}

// UnmarshalJSON implements defensive decoding; it never returns an error.
func (p *EnrichmentPayload) UnmarshalJSON(raw []byte) error {
	*p = ParseEnrichment(raw)
	return nil
}

// MarshalJSON re-emits the decoded object, or null when nothing usable was
// decoded, so a raw unparsed string never travels further.
func (p EnrichmentPayload) MarshalJSON() ([]byte, error) {
	if p.State == EnrichmentParsed {
		return json.Marshal(p.Data)
	}
	return []byte("null"), nil
}
