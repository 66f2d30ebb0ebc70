package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xdott/contact-dashboard-api/internal/dto"
	"github.com/xdott/contact-dashboard-api/internal/middleware"
	"github.com/xdott/contact-dashboard-api/internal/query"
	"github.com/xdott/contact-dashboard-api/internal/service"
	"github.com/xdott/contact-dashboard-api/internal/upstream"
)

// ContactsHandler exposes the dashboard contact endpoints.
type ContactsHandler struct {
	dashboard *service.DashboardService
}

// NewContactsHandler creates a new handler instance.
func NewContactsHandler(dashboard *service.DashboardService) *ContactsHandler {
	return &ContactsHandler{dashboard: dashboard}
}

// List handles GET /contacts requests.
func (h *ContactsHandler) List(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	filter := filterFromQuery(c)
	page := parseIntDefault(c.QueryParam("page"), 1)

	result, listErr := h.dashboard.List(requestContext(c), userEmail, filter, page)
	if listErr != nil {
		return Error(c, http.StatusBadGateway, "failed to load contacts")
	}

	return Success(c, http.StatusOK, "contacts retrieved", result)
}

// Refresh handles POST /contacts/refresh requests, bypassing the snapshot
// cache.
func (h *ContactsHandler) Refresh(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	count, refreshErr := h.dashboard.Refresh(requestContext(c), userEmail, true)
	if refreshErr != nil {
		return Error(c, http.StatusBadGateway, "failed to refresh contacts")
	}

	return Success(c, http.StatusOK, "contacts refreshed", map[string]any{"total": count})
}

// Update handles POST /contacts/update requests: a whole-record edit that is
// applied locally only after the backend confirms.
func (h *ContactsHandler) Update(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	var req dto.UpdateContactRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Contact.ID) == "" {
		return Error(c, http.StatusBadRequest, "contact id is required")
	}

	updated, updateErr := h.dashboard.UpdateContact(requestContext(c), userEmail, req.Contact)
	if updateErr != nil {
		return contactError(c, updateErr, "failed to update contact")
	}

	return Success(c, http.StatusOK, "contact updated", updated)
}

// Select handles POST /contacts/select requests for explicit id toggles.
func (h *ContactsHandler) Select(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	var req dto.SelectRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.ContactIDs) == 0 {
		return Error(c, http.StatusBadRequest, "contact_ids is required")
	}

	total := h.dashboard.Select(userEmail, req.ContactIDs, req.Selected)
	return Success(c, http.StatusOK, "selection updated", map[string]any{"selected_count": total})
}

// SelectPage handles POST /contacts/select-page requests: select-all scoped
// to one page of the current filtered view.
func (h *ContactsHandler) SelectPage(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	var req dto.SelectPageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	filter := query.Filter{
		Search:           req.Search,
		Company:          req.Company,
		JobTitle:         req.JobTitle,
		Location:         req.Location,
		LeadStatus:       req.LeadStatus,
		LeadSource:       req.LeadSource,
		ValidationStatus: req.ValidationStatus,
	}

	ids, selErr := h.dashboard.SelectPage(requestContext(c), userEmail, filter, req.Page, req.Selected)
	if selErr != nil {
		return Error(c, http.StatusBadGateway, "failed to update selection")
	}

	return Success(c, http.StatusOK, "selection updated", map[string]any{
		"page_ids":       ids,
		"selected_count": len(h.dashboard.SelectionIDs(userEmail)),
	})
}

// Selection handles GET /contacts/selection requests.
func (h *ContactsHandler) Selection(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}
	ids := h.dashboard.SelectionIDs(userEmail)
	return Success(c, http.StatusOK, "selection retrieved", map[string]any{"contact_ids": ids})
}

// ClearSelection handles DELETE /contacts/selection requests.
func (h *ContactsHandler) ClearSelection(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}
	h.dashboard.ClearSelection(userEmail)
	return Success(c, http.StatusOK, "selection cleared", nil)
}

// ValidateBulk handles POST /contacts/validate requests.
func (h *ContactsHandler) ValidateBulk(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	var req dto.BulkValidateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	summary, valErr := h.dashboard.ValidateSelected(requestContext(c), userEmail, req.ValidateAll)
	if valErr != nil {
		if errors.Is(valErr, service.ErrNothingSelected) {
			return Error(c, http.StatusBadRequest, "no contacts selected")
		}
		log.Printf("bulk validation failed user=%s err=%v", userEmail, valErr)
		return Error(c, http.StatusBadGateway, "bulk validation failed")
	}

	return Success(c, http.StatusOK, "bulk validation completed", summary)
}

// ValidateOne handles POST /contacts/:id/validate requests.
func (h *ContactsHandler) ValidateOne(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	contactID := c.Param("id")
	updated, valErr := h.dashboard.ValidateContact(requestContext(c), userEmail, contactID)
	if valErr != nil {
		if errors.Is(valErr, service.ErrNoEmail) {
			return Error(c, http.StatusBadRequest, "contact has no email to validate")
		}
		return contactError(c, valErr, "failed to validate contact")
	}

	return Success(c, http.StatusOK, "contact validated", updated)
}

// Enrich handles POST /contacts/:id/enrich requests (preview only).
func (h *ContactsHandler) Enrich(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	var req dto.EnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	profile, enrichErr := h.dashboard.EnrichPreview(requestContext(c), userEmail, c.Param("id"), req.LinkedInURL)
	if enrichErr != nil {
		return contactError(c, enrichErr, "failed to fetch enrichment")
	}

	return Success(c, http.StatusOK, "enrichment retrieved", profile)
}

// AcceptEnrichment handles POST /contacts/:id/accept-enrichment requests.
func (h *ContactsHandler) AcceptEnrichment(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	var req dto.EnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	updated, acceptErr := h.dashboard.AcceptEnrichment(requestContext(c), userEmail, c.Param("id"), req.LinkedInURL)
	if acceptErr != nil {
		return contactError(c, acceptErr, "failed to accept enrichment")
	}

	return Success(c, http.StatusOK, "enrichment accepted", updated)
}

func contactError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		return Error(c, http.StatusNotFound, "contact not found")
	case errors.Is(err, service.ErrContactBusy):
		return Error(c, http.StatusConflict, "another action is still running for this contact")
	default:
		return Error(c, http.StatusBadGateway, fallback)
	}
}

func filterFromQuery(c echo.Context) query.Filter {
	return query.Filter{
		Search:           strings.TrimSpace(c.QueryParam("search")),
		Company:          strings.TrimSpace(c.QueryParam("company")),
		JobTitle:         strings.TrimSpace(c.QueryParam("job_title")),
		Location:         strings.TrimSpace(c.QueryParam("location")),
		LeadStatus:       strings.TrimSpace(c.QueryParam("lead_status")),
		LeadSource:       strings.TrimSpace(c.QueryParam("lead_source")),
		ValidationStatus: strings.TrimSpace(c.QueryParam("validation_status")),
	}
}

func requireUserEmail(c echo.Context) (string, error) {
	email, ok := c.Get(middleware.ContextKeyUserEmail).(string)
	if !ok || email == "" {
		return "", Error(c, http.StatusUnauthorized, "missing authenticated user")
	}
	return email, nil
}

func requestContext(c echo.Context) context.Context {
	return upstream.ContextWithRequestID(c.Request().Context(), middleware.RequestIDFromContext(c))
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
