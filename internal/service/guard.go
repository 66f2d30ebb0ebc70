package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

// ErrNoEmail is returned when a contact has no email address to validate.
var ErrNoEmail = errors.New("contact has no email to validate")

// CheckEmailAddress is the client-side pre-flight guard run before a
// validation call: it rejects obviously unusable addresses locally so the
// round trip (and its credit cost) is skipped. The real verdict still comes
// from the backend.
func CheckEmailAddress(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrNoEmail
	}
	if !emailPattern.MatchString(email) {
		return errors.New("email address is not syntactically valid")
	}

	parts := strings.SplitN(email, "@", 2)
	domain := parts[1]
	if !isDomainValid(domain) {
		return errors.New("email domain is not valid")
	}
	if ascii, err := idnaProfile.ToASCII(domain); err != nil || ascii == "" {
		return errors.New("email domain is not valid")
	}
	return nil
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

// NormalizePhone formats a raw phone number to E.164 using the given default
// region. Unparseable or invalid input returns the raw value unchanged; the
// dashboard displays what it received rather than dropping it.
func NormalizePhone(raw, region string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if region == "" {
		region = "US"
	}
	number, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// checkLinkedInURL guards enrichment requests locally.
func checkLinkedInURL(raw string) error {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return errors.New("linkedin_url is required")
	}
	if !strings.Contains(trimmed, "linkedin.com/") {
		return errors.New("linkedin_url must point at a linkedin.com profile")
	}
	return nil
}
