package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/xdott/contact-dashboard-api/internal/auth"
	"github.com/xdott/contact-dashboard-api/internal/config"
	"github.com/xdott/contact-dashboard-api/internal/entity"
	"github.com/xdott/contact-dashboard-api/internal/handler"
	middlewarepkg "github.com/xdott/contact-dashboard-api/internal/middleware"
	"github.com/xdott/contact-dashboard-api/internal/repository"
	"github.com/xdott/contact-dashboard-api/internal/router"
	"github.com/xdott/contact-dashboard-api/internal/service"
	"github.com/xdott/contact-dashboard-api/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := repository.Open(ctx, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewSQLiteUsersRepository(db)
	snapshotCache := repository.NewSQLiteSnapshotCache(db)

	gateway := upstream.New(&http.Client{Timeout: cfg.UpstreamTimeout}, cfg.UpstreamBaseURL)

	if err := bootstrapAdmin(ctx, cfg, usersRepo); err != nil {
		log.Fatalf("failed to bootstrap admin account: %v", err)
	}

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	dashboardService := service.NewDashboardService(gateway,
		service.WithSnapshotCache(snapshotCache, cfg.CacheTTL),
		service.WithPageSize(cfg.PageSize),
		service.WithFetchLimit(cfg.FetchLimit),
		service.WithPhoneRegion(cfg.PhoneRegion),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserAdminHandler(userService),
		Contacts: handler.NewContactsHandler(dashboardService),
		Export:   handler.NewExportHandler(dashboardService),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// bootstrapAdmin seeds the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. The embedded database starts empty and members cannot
// promote themselves, so the first admin has to come from the environment.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users repository.UsersRepository) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := users.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	username := service.DeriveUsername(cfg.AdminEmail)
	if _, err := users.Create(ctx, cfg.AdminEmail, username, string(hashed), entity.RoleAdmin); err != nil {
		return err
	}
	log.Printf("seeded admin account email=%s username=%s", cfg.AdminEmail, username)
	return nil
}
