package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"weeklyreport/internal/config"
	apierrors "weeklyreport/internal/errors"
	"weeklyreport/internal/files"
	"weeklyreport/internal/infrastructure"
	customMiddleware "weeklyreport/internal/middleware"
	"weeklyreport/internal/services"
	handlers "weeklyreport/internal/transport/http"
	"weeklyreport/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	Workspaces    *files.Manager
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Report *services.ReportService
	Brand  *services.BrandService
	Health *services.HealthService
}

// NewApplication wires the services, router and HTTP server for cfg.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", contracts.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("work_dir", cfg.Paths.WorkDir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.Workspaces = files.NewManager(a.Config.Paths.WorkDir, a.Config.Paths.KeepArtifacts, a.Logger)
	if err := os.MkdirAll(a.Workspaces.Root(), 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	a.Services = &ServiceContainer{
		Report: services.NewReportService(a.Config.Analysis, a.Config.Report, a.Metrics, a.Logger),
		Brand:  services.NewBrandService(a.Metrics, a.Logger),
		Health: services.NewHealthService(contracts.Version, a.Workspaces.Root(), a.Logger),
	}
	return nil
}

// setupRouter configures the Chi router with all routes and middleware
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Scrapes stay out of the request log and the rate limit.
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler)
	r.With(customMiddleware.Recoverer(a.Logger)).Handle("/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupHTMLRoutes(r)
		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures the /api routes
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewRequestValidator(a.Logger)
	maxBytes := a.Config.Upload.MaxBytes

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(a.Services.Report, a.Workspaces, validator, maxBytes, a.ErrorHandler, a.Logger)
	brandHandler := handlers.NewBrandHandler(a.Services.Brand, a.Workspaces, validator, maxBytes, a.ErrorHandler, a.Logger)
	clientLogHandler := handlers.NewClientLogHandler(validator, a.ErrorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)

			r.With(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json")).
				Post("/logs", clientLogHandler.Handle)
		})

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "multipart/form-data"))

			r.Post("/analyze", reportHandler.Analyze)
			r.Mount("/brands", brandHandler.Routes())
		})
	})
}

// setupHTMLRoutes configures the upload page and its assets
func (a *Application) setupHTMLRoutes(r chi.Router) {
	r.Get("/", handlers.NewIndexHandler(a.Config.Upload.MaxBytes, a.Logger).ServeHTTP)
	r.Handle(handlers.StaticPrefix+"*", handlers.StaticHandler())
}

// getCORSConfig returns CORS configuration
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		ExposedHeaders: []string{"Content-Disposition", customMiddleware.RequestIDHeader, handlers.FlaggedSheetsHeader},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run serves HTTP until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops the HTTP server and flushes telemetry
func (a *Application) Shutdown(ctx context.Context) error {
	start := time.Now()
	var errs []error

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	a.Logger.Info("Shutdown complete", slog.Duration("duration", time.Since(start)))
	return errors.Join(errs...)
}
