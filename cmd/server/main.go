package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/authui/internal/config"
	"github.com/authui/internal/db"
	"github.com/authui/internal/guard"
	"github.com/authui/internal/http"
	"github.com/authui/internal/idp"
	"github.com/authui/internal/jobs"
	"github.com/authui/internal/locale"
	"github.com/authui/internal/logger"
	"github.com/authui/internal/session"
)

func main() {
	// Load .env file if it exists (optional, won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Load configuration
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.InitLogger(settings.Environment, settings.JSONLogs())

	if err := settings.ValidateSecrets(); err != nil {
		appLogger.Error("refusing to start with an unsafe session secret", "error", err)
		os.Exit(1)
	}
	if settings.Auth.Enabled && settings.Auth.JWTSecret == config.DefaultJWTSecret {
		appLogger.Warn("JWT_SECRET uses the built-in default; set a unique secret before deploying")
	}

	authCfg, err := settings.AuthConfig()
	if err != nil {
		appLogger.Error("failed to load auth ui config", "file", settings.ConfigFile, "error", err)
		os.Exit(1)
	}

	appLogger.Info("auth ui configuration loaded",
		"auth_enabled", settings.Auth.Enabled,
		"mock", authCfg.Mock,
		"middleware_disabled", authCfg.Middleware.Disabled,
		"protect_by_default", authCfg.Middleware.ProtectByDefault,
		"exception_routes", len(authCfg.Middleware.ExceptionRoutes),
		"sign_in", authCfg.Routes.SignIn,
	)
	if authCfg.Mock && settings.IsProduction() {
		appLogger.Warn("mock auth is enabled in production; anyone can sign in through the dev provider")
	}

	// Initialize database
	database, err := db.Init(settings.DatabasePath)
	if err != nil {
		appLogger.Error("failed to initialize database", "path", settings.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer database.Close()

	reg := prometheus.DefaultRegisterer

	locales, err := locale.NewBundle(authCfg.Locale, authCfg.Messages)
	if err != nil {
		appLogger.Error("failed to load locale catalogs", "error", err)
		os.Exit(1)
	}

	endpoint := settings.IdP.ResolvedEndpoint()
	if endpoint == "" {
		appLogger.Warn("IDP_ENDPOINT not set; connectors and password policy fall back to defaults and registration is unavailable")
	}
	idpClient := idp.NewClient(endpoint, settings.IdP.Timeout, appLogger, idp.WithMetrics(idp.NewMetrics(reg)))

	var sessions *session.Service
	if settings.Auth.Enabled || authCfg.Mock {
		sessions = session.New(session.Options{
			Settings:  settings.Auth,
			Providers: authCfg.EnabledSocialProviders(),
			Mock:      authCfg.Mock,
		}, appLogger)
		appLogger.Info("sessions enabled", "providers", sessions.Providers())
	} else {
		appLogger.Info("sessions disabled; every request is anonymous")
	}

	routeGuard := guard.New(authCfg, guard.WithMetrics(guard.NewMetrics(reg)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sessions != nil {
		go func() {
			if err := sessions.RunDevProvider(ctx); err != nil {
				appLogger.Error("dev auth provider failed", "error", err)
			}
		}()
	}

	// Background jobs
	registry := jobs.NewHandlerRegistry()
	registry.Register(jobs.JobTypePruneRegistrations,
		jobs.NewPruneRegistrationsHandler(database, settings.RegistrationRetention, appLogger))
	scheduler := jobs.NewScheduler(registry, time.Minute, appLogger)
	if err := scheduler.Schedule(jobs.JobTypePruneRegistrations, "@hourly"); err != nil {
		appLogger.Error("failed to schedule job", "type", jobs.JobTypePruneRegistrations, "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// Create HTTP server
	server := http.NewServer(http.Deps{
		Settings:      settings,
		AuthConfig:    authCfg,
		Guard:         routeGuard,
		IdP:           idpClient,
		Session:       sessions,
		Locales:       locales,
		Registrations: database,
		Registerer:    reg,
		Gatherer:      prometheus.DefaultGatherer,
		Logger:        appLogger,
	})

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("starting server", "address", settings.ServerAddress)
		errCh <- server.Run()
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("shutting down server...")
	case err := <-errCh:
		if err != nil {
			appLogger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), http.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown error", "error", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		appLogger.Error("job scheduler shutdown error", "error", err)
	}
	appLogger.Info("server stopped")
}
