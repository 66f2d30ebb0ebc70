package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xdott/contact-dashboard-api/internal/entity"
	"github.com/xdott/contact-dashboard-api/internal/query"
	"github.com/xdott/contact-dashboard-api/internal/repository"
	"github.com/xdott/contact-dashboard-api/internal/selection"
	"github.com/xdott/contact-dashboard-api/internal/store"
	"github.com/xdott/contact-dashboard-api/internal/upstream"
)

var (
	// ErrContactNotFound is returned when the id does not resolve in the store.
	ErrContactNotFound = errors.New("contact not found")
	// ErrContactBusy is returned when another action is running for the contact.
	ErrContactBusy = errors.New("another action is still running for this contact")
	// ErrNothingSelected is returned for a scoped bulk action with an empty selection.
	ErrNothingSelected = errors.New("no contacts selected")
)

// DashboardService owns one in-memory dashboard session per user: the record
// store, the selection set and the in-flight action tracker. All writes go
// through the upstream gateway first; the local store only changes after the
// backend confirmed.
type DashboardService struct {
	gateway upstream.Gateway
	cache   repository.SnapshotCache

	cacheTTL    time.Duration
	pageSize    int
	fetchLimit  int
	phoneRegion string

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	store     *store.Store
	selection *selection.Set
	inflight  *inflightTracker

	// mu guards the session's own fields below; store, selection and
	// inflight carry their own locks.
	mu         sync.Mutex
	lastFilter query.Filter
	loaded     bool
}

func (s *session) isLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *session) markLoaded() {
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
}

// trackFilter records the canonical filter and reports whether it differs
// from the previous call's.
func (s *session) trackFilter(canonical query.Filter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if canonical == s.lastFilter {
		return false
	}
	s.lastFilter = canonical
	return true
}

// DashboardOption configures optional service behavior.
type DashboardOption func(*DashboardService)

// WithSnapshotCache enables the short-lived per-user snapshot cache.
func WithSnapshotCache(cache repository.SnapshotCache, ttl time.Duration) DashboardOption {
	return func(s *DashboardService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithPageSize overrides the pagination window size.
func WithPageSize(size int) DashboardOption {
	return func(s *DashboardService) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithFetchLimit overrides how many contacts a refresh loads.
func WithFetchLimit(limit int) DashboardOption {
	return func(s *DashboardService) {
		if limit > 0 {
			s.fetchLimit = limit
		}
	}
}

// WithPhoneRegion sets the default region for phone normalization.
func WithPhoneRegion(region string) DashboardOption {
	return func(s *DashboardService) {
		if region != "" {
			s.phoneRegion = region
		}
	}
}

// NewDashboardService builds the service with sensible defaults.
func NewDashboardService(gateway upstream.Gateway, opts ...DashboardOption) *DashboardService {
	s := &DashboardService{
		gateway:     gateway,
		cacheTTL:    5 * time.Minute,
		pageSize:    query.DefaultPageSize,
		fetchLimit:  10000,
		phoneRegion: "US",
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DashboardService) session(userEmail string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userEmail]
	if !ok {
		sess = &session{
			store:     store.New(),
			selection: selection.NewSet(),
			inflight:  newInflightTracker(),
		}
		s.sessions[userEmail] = sess
	}
	return sess
}

// Refresh loads the user's contact set into the store. Within the cache
// freshness window it serves the cached snapshot unless force is set. When
// refreshes race, whichever response lands last overwrites the store; the
// operation is read-only upstream, so last write wins is safe.
func (s *DashboardService) Refresh(ctx context.Context, userEmail string, force bool) (int, error) {
	sess := s.session(userEmail)

	if !force && s.cache != nil {
		cached, fetchedAt, err := s.cache.Get(ctx, userEmail)
		if err == nil && time.Since(fetchedAt) <= s.cacheTTL {
			sess.store.ReplaceAll(cached)
			sess.markLoaded()
			return sess.store.Len(), nil
		}
	}

	contacts, err := s.gateway.FetchContacts(ctx, userEmail, s.fetchLimit)
	if err != nil {
		return 0, fmt.Errorf("refresh contacts: %w", err)
	}
	for i := range contacts {
		contacts[i].Phone = NormalizePhone(contacts[i].Phone, s.phoneRegion)
		contacts[i].Mobile = NormalizePhone(contacts[i].Mobile, s.phoneRegion)
	}

	sess.store.ReplaceAll(contacts)
	sess.markLoaded()
	s.writeCache(ctx, userEmail, sess)
	return sess.store.Len(), nil
}

func (s *DashboardService) writeCache(ctx context.Context, userEmail string, sess *session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, userEmail, sess.store.Snapshot()); err != nil {
		log.Printf("snapshot cache write failed user=%s err=%v", userEmail, err)
	}
}

func (s *DashboardService) ensureLoaded(ctx context.Context, userEmail string) (*session, error) {
	sess := s.session(userEmail)
	if sess.isLoaded() {
		return sess, nil
	}
	if _, err := s.Refresh(ctx, userEmail, false); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListResult is one rendered page of the dashboard list.
type ListResult struct {
	query.Page
	PageNumbers     []int             `json:"page_numbers"`
	PageAllSelected bool              `json:"page_all_selected"`
	SelectedCount   int               `json:"selected_count"`
	InFlight        map[string]Action `json:"in_flight,omitempty"`
}

// List applies the filter and pagination to the user's store. Any change in
// the filter inputs since the previous call resets the window to page 1; the
// old page position is meaningless against a new filtered set.
func (s *DashboardService) List(ctx context.Context, userEmail string, filter query.Filter, page int) (ListResult, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return ListResult{}, err
	}

	canonical := filter.Canonical()
	if sess.trackFilter(canonical) {
		page = 1
	}

	filtered := query.Apply(sess.store.Snapshot(), canonical)
	window := query.Paginate(filtered, page, s.pageSize)

	pageIDs := make([]string, 0, len(window.Records))
	for _, record := range window.Records {
		pageIDs = append(pageIDs, record.ID)
	}

	return ListResult{
		Page:            window,
		PageNumbers:     query.PageNumbers(window.Number, window.TotalPages, query.DefaultPagerWidth),
		PageAllSelected: sess.selection.AllPresent(pageIDs),
		SelectedCount:   sess.selection.Len(),
		InFlight:        sess.inflight.active(),
	}, nil
}

// UpdateContact applies a whole-record edit: the backend confirms first, then
// the store swaps the record atomically. On any failure the store keeps its
// last known good state.
func (s *DashboardService) UpdateContact(ctx context.Context, userEmail string, contact entity.Contact) (entity.Contact, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return entity.Contact{}, err
	}
	if _, ok := sess.store.Get(contact.ID); !ok {
		return entity.Contact{}, ErrContactNotFound
	}
	if !sess.inflight.begin(contact.ID, ActionEdit) {
		return entity.Contact{}, ErrContactBusy
	}
	defer sess.inflight.end(contact.ID)

	if err := s.gateway.UpdateContact(ctx, userEmail, contact); err != nil {
		return entity.Contact{}, err
	}

	contact.Normalize()
	sess.store.ReplaceOne(contact.ID, contact)
	s.writeCache(ctx, userEmail, sess)
	return contact, nil
}

// Select adds or removes explicit ids from the user's selection.
func (s *DashboardService) Select(userEmail string, contactIDs []string, selected bool) int {
	sess := s.session(userEmail)
	if selected {
		sess.selection.Add(contactIDs...)
	} else {
		sess.selection.Remove(contactIDs...)
	}
	return sess.selection.Len()
}

// SelectPage applies select-all to exactly the records on the given page of
// the given filtered view, never the whole filtered set.
func (s *DashboardService) SelectPage(ctx context.Context, userEmail string, filter query.Filter, page int, selected bool) ([]string, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	filtered := query.Apply(sess.store.Snapshot(), filter)
	window := query.Paginate(filtered, page, s.pageSize)

	ids := make([]string, 0, len(window.Records))
	for _, record := range window.Records {
		ids = append(ids, record.ID)
	}

	if selected {
		sess.selection.Add(ids...)
	} else {
		sess.selection.Remove(ids...)
	}
	return ids, nil
}

// SelectionIDs returns the selected ids, including ones currently hidden by
// a filter.
func (s *DashboardService) SelectionIDs(userEmail string) []string {
	return s.session(userEmail).selection.IDs()
}

// ClearSelection empties the user's selection.
func (s *DashboardService) ClearSelection(userEmail string) {
	s.session(userEmail).selection.Clear()
}

// ValidateSelected runs a bulk validation over the selection (or the whole
// database when validateAll is set) and refreshes the store so new scores
// become visible.
func (s *DashboardService) ValidateSelected(ctx context.Context, userEmail string, validateAll bool) (upstream.BulkValidationSummary, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return upstream.BulkValidationSummary{}, err
	}

	var ids []string
	if !validateAll {
		resolved := sess.selection.Resolve(sess.store.Snapshot())
		if len(resolved) == 0 {
			return upstream.BulkValidationSummary{}, ErrNothingSelected
		}
		ids = make([]string, 0, len(resolved))
		for _, record := range resolved {
			ids = append(ids, record.ID)
		}
	}

	summary, err := s.gateway.ValidateBulk(ctx, userEmail, validateAll, ids)
	if err != nil {
		return upstream.BulkValidationSummary{}, err
	}

	if _, err := s.Refresh(ctx, userEmail, true); err != nil {
		log.Printf("post-validation refresh failed user=%s err=%v", userEmail, err)
	}
	return summary, nil
}

// ValidateContact validates a single contact's email. The pre-flight guard
// rejects contacts without a usable address before any network call.
func (s *DashboardService) ValidateContact(ctx context.Context, userEmail, contactID string) (entity.Contact, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return entity.Contact{}, err
	}
	record, ok := sess.store.Get(contactID)
	if !ok {
		return entity.Contact{}, ErrContactNotFound
	}
	if err := CheckEmailAddress(record.Email); err != nil {
		return entity.Contact{}, err
	}
	if !sess.inflight.begin(contactID, ActionValidate) {
		return entity.Contact{}, ErrContactBusy
	}
	defer sess.inflight.end(contactID)

	result, err := s.gateway.ValidateSingle(ctx, userEmail, contactID, record.Email)
	if err != nil {
		return entity.Contact{}, err
	}

	updated := record
	updated.IsValidated = true
	updated.ValidationScore = result.ValidationScore
	updated.ValidationResult = result.ValidationResult
	updated.ValidationStatus = result.ValidationStatus
	updated.ValidatedAt = time.Now().UTC().Format(time.RFC3339)
	updated.Normalize()

	sess.store.ReplaceOne(contactID, updated)
	s.writeCache(ctx, userEmail, sess)
	return updated, nil
}

// EnrichPreview fetches an enrichment profile for review without touching the
// contact. The payload shape is backend-owned and passed through untyped.
func (s *DashboardService) EnrichPreview(ctx context.Context, userEmail, contactID, linkedinURL string) (map[string]any, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if _, ok := sess.store.Get(contactID); !ok {
		return nil, ErrContactNotFound
	}
	if err := checkLinkedInURL(linkedinURL); err != nil {
		return nil, err
	}
	if !sess.inflight.begin(contactID, ActionEnrich) {
		return nil, ErrContactBusy
	}
	defer sess.inflight.end(contactID)

	return s.gateway.EnrichProfile(ctx, userEmail, linkedinURL)
}

// AcceptEnrichment attaches the enrichment to the contact upstream, then
// swaps the updated record locally.
func (s *DashboardService) AcceptEnrichment(ctx context.Context, userEmail, contactID, linkedinURL string) (entity.Contact, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return entity.Contact{}, err
	}
	record, ok := sess.store.Get(contactID)
	if !ok {
		return entity.Contact{}, ErrContactNotFound
	}
	if err := checkLinkedInURL(linkedinURL); err != nil {
		return entity.Contact{}, err
	}
	if !sess.inflight.begin(contactID, ActionAccept) {
		return entity.Contact{}, ErrContactBusy
	}
	defer sess.inflight.end(contactID)

	profileID, err := s.gateway.AcceptEnrichment(ctx, userEmail, contactID, linkedinURL)
	if err != nil {
		return entity.Contact{}, err
	}

	updated := record
	updated.HasEnrichment = true
	updated.EnrichedProfileID = profileID
	updated.EnrichedLinkedInURL = linkedinURL
	updated.EnrichmentAcceptedAt = time.Now().UTC().Format(time.RFC3339)

	sess.store.ReplaceOne(contactID, updated)
	s.writeCache(ctx, userEmail, sess)
	return updated, nil
}

// Export returns the filtered records, optionally narrowed to the selection,
// in store order.
func (s *DashboardService) Export(ctx context.Context, userEmail string, filter query.Filter, selectedOnly bool) ([]entity.Contact, error) {
	sess, err := s.ensureLoaded(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	filtered := query.Apply(sess.store.Snapshot(), filter)
	if !selectedOnly {
		return filtered, nil
	}
	return sess.selection.Resolve(filtered), nil
}

// InFlight reports the per-contact actions currently running for the user.
func (s *DashboardService) InFlight(userEmail string) map[string]Action {
	return s.session(userEmail).inflight.active()
}
