package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xdott/contact-dashboard-api/internal/auth"
	"github.com/xdott/contact-dashboard-api/internal/config"
	"github.com/xdott/contact-dashboard-api/internal/entity"
	"github.com/xdott/contact-dashboard-api/internal/handler"
	middlewarepkg "github.com/xdott/contact-dashboard-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserAdminHandler
	Contacts *handler.ContactsHandler
	Export   *handler.ExportHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole(entity.RoleAdmin))
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)

	contacts := secured.Group("/contacts")
	contacts.GET("", handlers.Contacts.List)
	contacts.POST("/refresh", handlers.Contacts.Refresh)
	contacts.POST("/update", handlers.Contacts.Update)
	contacts.POST("/select", handlers.Contacts.Select)
	contacts.POST("/select-page", handlers.Contacts.SelectPage)
	contacts.GET("/selection", handlers.Contacts.Selection)
	contacts.DELETE("/selection", handlers.Contacts.ClearSelection)
	contacts.GET("/export", handlers.Export.Export)

	// Validation and enrichment proxy to the upstream API and share one
	// rate limit.
	upstreamLimit := middlewarepkg.UpstreamRateLimiter(cfg.RateLimitUpstream)
	contacts.POST("/validate", handlers.Contacts.ValidateBulk, upstreamLimit)
	contacts.POST("/:id/validate", handlers.Contacts.ValidateOne, upstreamLimit)
	contacts.POST("/:id/enrich", handlers.Contacts.Enrich, upstreamLimit)
	contacts.POST("/:id/accept-enrichment", handlers.Contacts.AcceptEnrichment, upstreamLimit)
}
