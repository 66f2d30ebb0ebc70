package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xdott/contact-dashboard-api/internal/entity"
	"github.com/xdott/contact-dashboard-api/internal/query"
	"github.com/xdott/contact-dashboard-api/internal/upstream"
)

type mockGateway struct {
	mu           sync.Mutex
	contacts     []entity.Contact
	fetchCalls   int
	fetchErr     error
	updateErr    error
	updateCalls  int
	bulkSummary  upstream.BulkValidationSummary
	bulkErr      error
	bulkIDs      []string
	bulkAll      bool
	singleResult upstream.SingleValidationResult
	singleErr    error
	singleCalls  int
	profile      map[string]any
	profileID    string
}

func (m *mockGateway) FetchContacts(ctx context.Context, userEmail string, limit int) ([]entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]entity.Contact, len(m.contacts))
	copy(out, m.contacts)
	return out, nil
}

func (m *mockGateway) UpdateContact(ctx context.Context, userEmail string, contact entity.Contact) error {
	m.updateCalls++
	return m.updateErr
}

func (m *mockGateway) ValidateBulk(ctx context.Context, userEmail string, validateAll bool, contactIDs []string) (upstream.BulkValidationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkAll = validateAll
	m.bulkIDs = contactIDs
	return m.bulkSummary, m.bulkErr
}

func (m *mockGateway) ValidateSingle(ctx context.Context, userEmail, contactID, email string) (upstream.SingleValidationResult, error) {
	m.singleCalls++
	return m.singleResult, m.singleErr
}

func (m *mockGateway) EnrichProfile(ctx context.Context, userEmail, linkedinURL string) (map[string]any, error) {
	return m.profile, nil
}

func (m *mockGateway) AcceptEnrichment(ctx context.Context, userEmail, contactID, linkedinURL string) (string, error) {
	return m.profileID, nil
}

func seedContacts(n int) []entity.Contact {
	contacts := make([]entity.Contact, n)
	for i := range contacts {
		contacts[i] = entity.Contact{
			ID:      fmt.Sprintf("c-%03d", i+1),
			Email:   fmt.Sprintf("user%d@example.com", i+1),
			Company: "Acme",
		}
	}
	return contacts
}

const testUser = "owner@example.com"

func TestListLoadsLazilyAndPaginates(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(120)}
	svc := NewDashboardService(gw)

	result, err := svc.List(context.Background(), testUser, query.Filter{}, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gw.fetchCalls != 1 {
		t.Errorf("fetch calls = %d, want 1 lazy load", gw.fetchCalls)
	}
	if result.Number != 2 || result.TotalItems != 120 || len(result.Records) != 20 {
		t.Fatalf("window = page %d, %d items, %d records", result.Number, result.TotalItems, len(result.Records))
	}

	// Subsequent lists reuse the loaded store.
	if _, err := svc.List(context.Background(), testUser, query.Filter{}, 1); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if gw.fetchCalls != 1 {
		t.Errorf("fetch calls = %d after second list", gw.fetchCalls)
	}
}

func TestListFilterChangeResetsPage(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(250)}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	result, err := svc.List(ctx, testUser, query.Filter{}, 3)
	if err != nil || result.Number != 3 {
		t.Fatalf("page = %d err = %v, want 3", result.Number, err)
	}

	// New filter criteria invalidate the old page position.
	result, err = svc.List(ctx, testUser, query.Filter{Company: "acme"}, 3)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if result.Number != 1 {
		t.Fatalf("filter change kept page %d, want reset to 1", result.Number)
	}

	// Same canonical filter again keeps the requested page.
	result, err = svc.List(ctx, testUser, query.Filter{Company: " ACME "}, 2)
	if err != nil || result.Number != 2 {
		t.Fatalf("page = %d err = %v, want 2 for unchanged filter", result.Number, err)
	}
}

func TestUpdateContactConfirmThenSwap(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(3)}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	edited := entity.Contact{ID: "c-002", Email: "user2@example.com", Company: "Globex"}
	updated, err := svc.UpdateContact(ctx, testUser, edited)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Company != "Globex" {
		t.Fatalf("returned record not updated: %+v", updated)
	}

	result, err := svc.List(ctx, testUser, query.Filter{}, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Records[1].Company != "Globex" {
		t.Errorf("store not swapped: %+v", result.Records[1])
	}
	if result.Records[0].Company != "Acme" || result.Records[2].Company != "Acme" {
		t.Errorf("neighbouring records changed")
	}
}

func TestUpdateContactFailureLeavesStoreUntouched(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(2), updateErr: errors.New("backend down")}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	_, err := svc.UpdateContact(ctx, testUser, entity.Contact{ID: "c-001", Company: "Globex"})
	if err == nil {
		t.Fatalf("expected error")
	}

	result, _ := svc.List(ctx, testUser, query.Filter{}, 1)
	if result.Records[0].Company != "Acme" {
		t.Fatalf("failed update mutated the store: %+v", result.Records[0])
	}
}

func TestUpdateContactUnknownID(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(1)}
	svc := NewDashboardService(gw)

	_, err := svc.UpdateContact(context.Background(), testUser, entity.Contact{ID: "c-404"})
	if !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("err = %v, want ErrContactNotFound", err)
	}
	if gw.updateCalls != 0 {
		t.Fatalf("unknown id reached the backend")
	}
}

func TestSelectionPersistsAcrossFilters(t *testing.T) {
	contacts := seedContacts(5)
	contacts[4].Company = "Globex"
	gw := &mockGateway{contacts: contacts}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	svc.Select(testUser, []string{"c-005"}, true)

	// c-005 is hidden by the Acme filter but stays selected.
	result, err := svc.List(ctx, testUser, query.Filter{Company: "acme"}, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.SelectedCount != 1 {
		t.Fatalf("selected count = %d under filter, want 1", result.SelectedCount)
	}
	if result.PageAllSelected {
		t.Fatalf("page of unselected contacts reported all-selected")
	}

	ids := svc.SelectionIDs(testUser)
	if len(ids) != 1 || ids[0] != "c-005" {
		t.Fatalf("selection ids = %v", ids)
	}
}

func TestSelectPageIsPageScoped(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(250)}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	ids, err := svc.SelectPage(ctx, testUser, query.Filter{}, 2, true)
	if err != nil {
		t.Fatalf("select page: %v", err)
	}
	if len(ids) != 100 {
		t.Fatalf("page scope selected %d ids, want 100", len(ids))
	}
	if got := len(svc.SelectionIDs(testUser)); got != 100 {
		t.Fatalf("selection size = %d, want the page only", got)
	}

	// Deselecting the same page empties the set again.
	if _, err := svc.SelectPage(ctx, testUser, query.Filter{}, 2, false); err != nil {
		t.Fatalf("deselect page: %v", err)
	}
	if got := len(svc.SelectionIDs(testUser)); got != 0 {
		t.Fatalf("selection size after deselect = %d", got)
	}
}

func TestValidateSelectedRequiresSelection(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(3)}
	svc := NewDashboardService(gw)

	_, err := svc.ValidateSelected(context.Background(), testUser, false)
	if !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("err = %v, want ErrNothingSelected", err)
	}
}

func TestValidateSelectedSendsResolvedIDs(t *testing.T) {
	gw := &mockGateway{
		contacts:    seedContacts(3),
		bulkSummary: upstream.BulkValidationSummary{TotalProcessed: 2, SuccessfulValidations: 2},
	}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	svc.Select(testUser, []string{"c-001", "c-003", "c-gone"}, true)

	summary, err := svc.ValidateSelected(ctx, testUser, false)
	if err != nil {
		t.Fatalf("validate selected: %v", err)
	}
	if summary.TotalProcessed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if gw.bulkAll {
		t.Errorf("validate_all sent for a scoped run")
	}
	// The dead id is dropped at resolve time, not sent upstream.
	if len(gw.bulkIDs) != 2 || gw.bulkIDs[0] != "c-001" || gw.bulkIDs[1] != "c-003" {
		t.Fatalf("bulk ids = %v", gw.bulkIDs)
	}
	// A forced refresh follows so new scores become visible.
	if gw.fetchCalls < 2 {
		t.Errorf("fetch calls = %d, want post-validation refresh", gw.fetchCalls)
	}
}

func TestValidateContactGuardSkipsNetwork(t *testing.T) {
	contacts := seedContacts(2)
	contacts[0].Email = "not-an-email"
	gw := &mockGateway{contacts: contacts}
	svc := NewDashboardService(gw)

	_, err := svc.ValidateContact(context.Background(), testUser, "c-001")
	if err == nil {
		t.Fatalf("expected guard error")
	}
	if gw.singleCalls != 0 {
		t.Fatalf("guard failure still hit the backend")
	}
}

func TestValidateContactMergesResult(t *testing.T) {
	score := 88
	gw := &mockGateway{
		contacts: seedContacts(1),
		singleResult: upstream.SingleValidationResult{
			ValidationScore:  &score,
			ValidationResult: "deliverable",
			ValidationStatus: "valid",
		},
	}
	svc := NewDashboardService(gw)

	updated, err := svc.ValidateContact(context.Background(), testUser, "c-001")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !updated.IsValidated || updated.ValidationScore == nil || *updated.ValidationScore != 88 {
		t.Fatalf("result not merged: %+v", updated)
	}
	if updated.ValidationResult != "deliverable" || updated.ValidatedAt == "" {
		t.Fatalf("result not merged: %+v", updated)
	}
	if _, err := time.Parse(time.RFC3339, updated.ValidatedAt); err != nil {
		t.Fatalf("validated_at not RFC3339: %q", updated.ValidatedAt)
	}
}

func TestAcceptEnrichmentSwapsRecord(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(1), profileID: "ep-7"}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	updated, err := svc.AcceptEnrichment(ctx, testUser, "c-001", "https://linkedin.com/in/jane")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !updated.HasEnrichment || updated.EnrichedProfileID != "ep-7" {
		t.Fatalf("enrichment fields not set: %+v", updated)
	}

	result, _ := svc.List(ctx, testUser, query.Filter{}, 1)
	if !result.Records[0].HasEnrichment {
		t.Fatalf("store record not swapped")
	}
}

func TestEnrichPreviewRejectsBadURL(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(1)}
	svc := NewDashboardService(gw)

	if _, err := svc.EnrichPreview(context.Background(), testUser, "c-001", "https://example.com/jane"); err == nil {
		t.Fatalf("expected url guard error")
	}
}

func TestExportSelectedOnly(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(4)}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	svc.Select(testUser, []string{"c-004", "c-002"}, true)

	contacts, err := svc.Export(ctx, testUser, query.Filter{}, true)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	// Store order, not selection order.
	if len(contacts) != 2 || contacts[0].ID != "c-002" || contacts[1].ID != "c-004" {
		t.Fatalf("exported %v", contacts)
	}

	all, err := svc.Export(ctx, testUser, query.Filter{}, false)
	if err != nil || len(all) != 4 {
		t.Fatalf("full export returned %d contacts, err %v", len(all), err)
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	gw := &mockGateway{contacts: seedContacts(2)}
	svc := NewDashboardService(gw)

	svc.Select("alice@example.com", []string{"c-001"}, true)
	if got := len(svc.SelectionIDs("bob@example.com")); got != 0 {
		t.Fatalf("bob sees alice's selection: %d ids", got)
	}
}

func TestListConcurrentFilterChanges(t *testing.T) {
	// Two tabs of the same dashboard hammer List with alternating filters
	// while a forced Refresh runs; session state must stay consistent
	// under the race detector.
	gw := &mockGateway{contacts: seedContacts(250)}
	svc := NewDashboardService(gw)
	ctx := context.Background()

	filters := []query.Filter{
		{},
		{Company: "acme"},
		{Search: "user1"},
		{ValidationStatus: query.ValidationNotValidated},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := svc.List(ctx, testUser, filters[(i+j)%len(filters)], 2); err != nil {
					t.Errorf("list: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			if _, err := svc.Refresh(ctx, testUser, true); err != nil {
				t.Errorf("refresh: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	// The filter-change reset still holds once the dust settles.
	if _, err := svc.List(ctx, testUser, query.Filter{Company: "globex"}, 3); err != nil {
		t.Fatalf("list: %v", err)
	}
	result, err := svc.List(ctx, testUser, query.Filter{Company: "acme"}, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Number != 1 {
		t.Fatalf("filter change kept page %d, want reset to 1", result.Number)
	}
}

func TestRefreshErrorPropagates(t *testing.T) {
	gw := &mockGateway{fetchErr: errors.New("upstream down")}
	svc := NewDashboardService(gw)

	if _, err := svc.List(context.Background(), testUser, query.Filter{}, 1); err == nil {
		t.Fatalf("expected error when initial load fails")
	}
}
