package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xdott/contact-dashboard-api/internal/entity"
)

func testContact(id string) entity.Contact {
	return entity.Contact{ID: id, Email: id + "@example.com"}
}

func TestFetchContactsPrimaryPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/contacts/with-enrichment") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "user@example.com" {
			t.Errorf("email param = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "500" {
			t.Errorf("limit param = %q", got)
		}
		_, _ = w.Write([]byte(`{"contacts":[{"id":"c-1","email":"a@x.com"},{"email":"b@x.com"}]}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	contacts, err := c.FetchContacts(context.Background(), "user@example.com", 500)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts", len(contacts))
	}
	// Records are normalized on the way in: the second one had no id.
	if contacts[1].ID == "" || !strings.HasPrefix(contacts[1].ID, "local-") {
		t.Fatalf("missing id not backfilled: %q", contacts[1].ID)
	}
	if contacts[1].LeadStatus == "" {
		t.Fatalf("lead status default not applied")
	}
}

func TestFetchContactsFallsBack(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasPrefix(r.URL.Path, "/api/contacts/with-enrichment") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"contacts":[{"id":"c-1"}]}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	contacts, err := c.FetchContacts(context.Background(), "user@example.com", 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("got %d contacts", len(contacts))
	}
	if len(paths) != 2 || !strings.HasPrefix(paths[1], "/api/contacts/contacts") {
		t.Fatalf("fallback path not taken: %v", paths)
	}
}

func TestValidateBulkDecodesSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/email-validation/validate-bulk" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			ValidateAll bool     `json:"validate_all"`
			ContactIDs  []string `json:"contact_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if body.ValidateAll || len(body.ContactIDs) != 2 {
			t.Errorf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`{"summary":{"total_processed":2,"successful_validations":1}}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	summary, err := c.ValidateBulk(context.Background(), "user@example.com", false, []string{"c-1", "c-2"})
	if err != nil {
		t.Fatalf("validate bulk: %v", err)
	}
	if summary.TotalProcessed != 2 || summary.SuccessfulValidations != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestBackendErrorIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"no validation credits left"}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	_, err := c.ValidateBulk(context.Background(), "user@example.com", true, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "no validation credits left") {
		t.Fatalf("backend message lost: %v", err)
	}
}

func TestUpdateContactOnlySucceedsOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	err := c.UpdateContact(context.Background(), "user@example.com", testContact("c-1"))
	if err == nil {
		t.Fatalf("expected error on 500")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("raw body not surfaced for non-JSON error: %v", err)
	}
}

func TestRequestIDForwarded(t *testing.T) {
	var gotRID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	ctx := ContextWithRequestID(context.Background(), "rid-789")
	if err := c.UpdateContact(ctx, "user@example.com", testContact("c-1")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotRID != "rid-789" {
		t.Fatalf("X-Request-ID = %q", gotRID)
	}
}

func TestAcceptEnrichmentReturnsProfileID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"enriched_profile_id":"ep-42"}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	id, err := c.AcceptEnrichment(context.Background(), "user@example.com", "c-1", "https://linkedin.com/in/jane")
	if err != nil {
		t.Fatalf("accept enrichment: %v", err)
	}
	if id != "ep-42" {
		t.Fatalf("profile id = %q", id)
	}
}

func TestEmptyResponseBodyTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.Client(), srv.URL)
	if err := c.UpdateContact(context.Background(), "user@example.com", testContact("c-1")); err != nil {
		t.Fatalf("empty 200 body should succeed: %v", err)
	}
}
