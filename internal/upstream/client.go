// Package upstream is the JSON-over-HTTP gateway to the contact backend. The
// dashboard never reimplements backend logic; every call here is a thin,
// context-aware wrapper that surfaces backend errors verbatim.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

// Gateway describes the backend operations the dashboard consumes.
type Gateway interface {
	FetchContacts(ctx context.Context, userEmail string, limit int) ([]entity.Contact, error)
	UpdateContact(ctx context.Context, userEmail string, contact entity.Contact) error
	ValidateBulk(ctx context.Context, userEmail string, validateAll bool, contactIDs []string) (BulkValidationSummary, error)
	ValidateSingle(ctx context.Context, userEmail, contactID, email string) (SingleValidationResult, error)
	EnrichProfile(ctx context.Context, userEmail, linkedinURL string) (map[string]any, error)
	AcceptEnrichment(ctx context.Context, userEmail, contactID, linkedinURL string) (string, error)
}

// BulkValidationSummary is the aggregate result of a bulk validation run.
type BulkValidationSummary struct {
	TotalProcessed        int `json:"total_processed"`
	SuccessfulValidations int `json:"successful_validations"`
}

// SingleValidationResult carries the fields a single validation returns.
type SingleValidationResult struct {
	ValidationScore  *int   `json:"validation_score"`
	ValidationResult string `json:"validation_result"`
	ValidationStatus string `json:"validation_status"`
}

// Client is the production Gateway implementation.
type Client struct {
	client  *http.Client
	baseURL string
}

// New builds a client for the given API base URL. A nil http.Client gets an
// ID-token client when the environment provides one (service-to-service
// calls), with a plain timeout client as fallback.
func New(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		panic("upstream baseURL must not be empty")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 15 * time.Second}
		} else {
			client = idc
		}
	}
	return &Client{client: client, baseURL: baseURL}
}

var _ Gateway = (*Client)(nil)

// FetchContacts loads the user's full contact set. It tries the enrichment
// join first and falls back to the plain contacts endpoint (reduced field
// set) when that path is unavailable.
func (c *Client) FetchContacts(ctx context.Context, userEmail string, limit int) ([]entity.Contact, error) {
	if limit <= 0 {
		limit = 10000
	}
	params := url.Values{}
	params.Set("email", userEmail)
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(limit))

	contacts, err := c.fetchContactList(ctx, "/api/contacts/with-enrichment?"+params.Encode())
	if err == nil {
		return contacts, nil
	}

	contacts, fallbackErr := c.fetchContactList(ctx, "/api/contacts/contacts?"+params.Encode())
	if fallbackErr != nil {
		return nil, fmt.Errorf("fetch contacts: %w (with-enrichment path: %v)", fallbackErr, err)
	}
	return contacts, nil
}

func (c *Client) fetchContactList(ctx context.Context, path string) ([]entity.Contact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build contacts request: %w", err)
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("contacts request failed: %s", extractError(resp.Body))
	}

	var payload struct {
		Contacts []entity.Contact `json:"contacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode contacts response: %w", err)
	}
	for i := range payload.Contacts {
		payload.Contacts[i].Normalize()
	}
	return payload.Contacts, nil
}

// UpdateContact persists a whole-record edit. The caller must only apply the
// local swap after this returns nil.
func (c *Client) UpdateContact(ctx context.Context, userEmail string, contact entity.Contact) error {
	body := map[string]any{
		"contact": contact,
		"email":   userEmail,
	}
	_, err := c.postJSON(ctx, "/api/contacts/update", body)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// ValidateBulk asks the backend to validate the given contact ids, or the
// whole database when validateAll is set.
func (c *Client) ValidateBulk(ctx context.Context, userEmail string, validateAll bool, contactIDs []string) (BulkValidationSummary, error) {
	body := map[string]any{
		"validate_all": validateAll,
		"contact_ids":  contactIDs,
	}
	raw, err := c.postJSON(ctx, "/api/email-validation/validate-bulk?email="+url.QueryEscape(userEmail), body)
	if err != nil {
		return BulkValidationSummary{}, fmt.Errorf("bulk validation: %w", err)
	}

	var payload struct {
		Summary BulkValidationSummary `json:"summary"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return BulkValidationSummary{}, fmt.Errorf("decode bulk validation summary: %w", err)
	}
	return payload.Summary, nil
}

// ValidateSingle validates one contact's email address.
func (c *Client) ValidateSingle(ctx context.Context, userEmail, contactID, email string) (SingleValidationResult, error) {
	body := map[string]any{
		"contact_id": contactID,
		"email":      email,
	}
	raw, err := c.postJSON(ctx, "/api/email-validation/validate-single?email="+url.QueryEscape(userEmail), body)
	if err != nil {
		return SingleValidationResult{}, fmt.Errorf("single validation: %w", err)
	}

	var result SingleValidationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return SingleValidationResult{}, fmt.Errorf("decode validation result: %w", err)
	}
	return result, nil
}

// EnrichProfile fetches a LinkedIn enrichment preview. The payload shape is
// backend-owned, so it is passed through untyped.
func (c *Client) EnrichProfile(ctx context.Context, userEmail, linkedinURL string) (map[string]any, error) {
	body := map[string]any{"linkedin_url": linkedinURL}
	raw, err := c.postJSON(ctx, "/api/enrich_profile?email="+url.QueryEscape(userEmail), body)
	if err != nil {
		return nil, fmt.Errorf("enrich profile: %w", err)
	}

	var profile map[string]any
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode enrichment profile: %w", err)
	}
	return profile, nil
}

// AcceptEnrichment attaches an enrichment profile to a contact and returns
// the enriched profile id.
func (c *Client) AcceptEnrichment(ctx context.Context, userEmail, contactID, linkedinURL string) (string, error) {
	body := map[string]any{
		"contact_id":   contactID,
		"linkedin_url": linkedinURL,
	}
	raw, err := c.postJSON(ctx, "/api/contacts/accept-enrichment?email="+url.QueryEscape(userEmail), body)
	if err != nil {
		return "", fmt.Errorf("accept enrichment: %w", err)
	}

	var payload struct {
		EnrichedProfileID string `json:"enriched_profile_id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode accept-enrichment response: %w", err)
	}
	return payload.EnrichedProfileID, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if rid := requestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("backend error: %s", extractError(resp.Body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	return raw, nil
}

func extractError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "backend returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}
