// Package query implements the in-memory contact list engine: a pure filter
// predicate layer and a fixed-size pagination window over a store snapshot.
// Both are total functions; missing fields never match and never error.
package query

import (
	"strings"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

// FilterAll is the sentinel value that deactivates an exact-match filter.
const FilterAll = "all"

// Validation status buckets accepted by Filter.ValidationStatus.
const (
	ValidationValidated    = "validated"
	ValidationNotValidated = "not_validated"
	ValidationHighScore    = "high_score"
	ValidationMediumScore  = "medium_score"
	ValidationLowScore     = "low_score"
)

// Filter is the structured filter configuration for the contact list. Empty
// or whitespace-only values (and the "all" sentinel where applicable) impose
// no constraint. Categories compose by logical AND; the free-text search
// matches by OR across its candidate fields.
type Filter struct {
	Search           string
	Company          string
	JobTitle         string
	Location         string
	LeadStatus       string
	LeadSource       string
	ValidationStatus string
}

// IsZero reports whether the filter imposes no constraint at all.
func (f Filter) IsZero() bool {
	return f.normalized() == Filter{}
}

// Canonical returns the trimmed, lower-cased form of the filter with the
// "all" sentinels erased. Two filters with the same canonical form always
// select the same records, which makes it the right key for detecting filter
// changes.
func (f Filter) Canonical() Filter {
	return f.normalized()
}

func (f Filter) normalized() Filter {
	norm := Filter{
		Search:           strings.ToLower(strings.TrimSpace(f.Search)),
		Company:          strings.ToLower(strings.TrimSpace(f.Company)),
		JobTitle:         strings.ToLower(strings.TrimSpace(f.JobTitle)),
		Location:         strings.ToLower(strings.TrimSpace(f.Location)),
		LeadStatus:       strings.ToLower(strings.TrimSpace(f.LeadStatus)),
		LeadSource:       strings.ToLower(strings.TrimSpace(f.LeadSource)),
		ValidationStatus: strings.ToLower(strings.TrimSpace(f.ValidationStatus)),
	}
	if norm.LeadStatus == FilterAll {
		norm.LeadStatus = ""
	}
	if norm.LeadSource == FilterAll {
		norm.LeadSource = ""
	}
	if norm.ValidationStatus == FilterAll {
		norm.ValidationStatus = ""
	}
	return norm
}

// Match reports whether the contact satisfies every active criterion.
func (f Filter) Match(c entity.Contact) bool {
	return f.normalized().match(c)
}

// match assumes the receiver is already normalized.
func (norm Filter) match(c entity.Contact) bool {
	if norm.Search != "" && !matchSearch(c, norm.Search) {
		return false
	}
	if norm.Company != "" && !containsFold(c.Company, norm.Company) {
		return false
	}
	if norm.JobTitle != "" && !containsFold(c.JobTitle, norm.JobTitle) {
		return false
	}
	if norm.Location != "" && !containsFold(c.Location(), norm.Location) {
		return false
	}
	if norm.LeadStatus != "" && !equalFold(c.LeadStatus, norm.LeadStatus) {
		return false
	}
	if norm.LeadSource != "" && !equalFold(c.LeadSource, norm.LeadSource) {
		return false
	}
	if norm.ValidationStatus != "" && !matchValidation(c, norm.ValidationStatus) {
		return false
	}
	return true
}

// Apply returns the contacts matching the filter, preserving input order.
// The input slice is never mutated.
func Apply(contacts []entity.Contact, f Filter) []entity.Contact {
	norm := f.normalized()
	if (norm == Filter{}) {
		out := make([]entity.Contact, len(contacts))
		copy(out, contacts)
		return out
	}

	matched := make([]entity.Contact, 0, len(contacts))
	for _, c := range contacts {
		if norm.match(c) {
			matched = append(matched, c)
		}
	}
	return matched
}

func matchSearch(c entity.Contact, term string) bool {
	candidates := []string{
		c.Email,
		c.FirstName,
		c.LastName,
		c.FullName,
		c.Company,
		c.JobTitle,
		c.EnrichedFullName(),
		c.EnrichedHeadline(),
	}
	for _, field := range candidates {
		if containsFold(field, term) {
			return true
		}
	}
	return false
}

func matchValidation(c entity.Contact, bucket string) bool {
	switch bucket {
	case ValidationValidated:
		return c.IsValidated
	case ValidationNotValidated:
		return !c.IsValidated
	case ValidationHighScore:
		return scoreOrZero(c) >= 80
	case ValidationMediumScore:
		score := scoreOrZero(c)
		return score >= 60 && score < 80
	case ValidationLowScore:
		return scoreOrZero(c) < 60
	default:
		// Unknown bucket values impose no constraint.
		return true
	}
}

// scoreOrZero treats an absent score as 0, which places unscored contacts in
// the low_score bucket.
func scoreOrZero(c entity.Contact) int {
	if c.ValidationScore == nil {
		return 0
	}
	return *c.ValidationScore
}

// containsFold reports whether needle occurs in haystack, case-insensitively.
// The needle is expected to be already lower-cased and trimmed.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func equalFold(value, needle string) bool {
	return strings.ToLower(strings.TrimSpace(value)) == needle
}
