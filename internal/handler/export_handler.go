package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xdott/contact-dashboard-api/internal/export"
	"github.com/xdott/contact-dashboard-api/internal/service"
)

// ExportHandler streams the filtered contact list as a CSV download.
type ExportHandler struct {
	dashboard *service.DashboardService
}

// NewExportHandler creates a new handler instance.
func NewExportHandler(dashboard *service.DashboardService) *ExportHandler {
	return &ExportHandler{dashboard: dashboard}
}

// Export handles GET /contacts/export requests. With selected_only=true only
// the currently selected contacts are exported; otherwise the export covers
// every contact matching the filter, across all pages.
func (h *ExportHandler) Export(c echo.Context) error {
	userEmail, err := requireUserEmail(c)
	if err != nil {
		return err
	}

	filter := filterFromQuery(c)
	selectedOnly := c.QueryParam("selected_only") == "true"

	contacts, exportErr := h.dashboard.Export(requestContext(c), userEmail, filter, selectedOnly)
	if exportErr != nil {
		return Error(c, http.StatusBadGateway, "failed to export contacts")
	}

	filename := export.Filename(time.Now())
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)

	if err := export.Write(c.Response(), contacts); err != nil {
		return err
	}
	return nil
}
