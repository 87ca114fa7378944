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
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	apierrors "github.com/IsnaAyustin/final-project-ds/internal/errors"
	"github.com/IsnaAyustin/final-project-ds/internal/infrastructure"
	customMiddleware "github.com/IsnaAyustin/final-project-ds/internal/middleware"
	"github.com/IsnaAyustin/final-project-ds/internal/services"
	handlers "github.com/IsnaAyustin/final-project-ds/internal/transport/http"
	ws "github.com/IsnaAyustin/final-project-ds/internal/websocket"
	"github.com/IsnaAyustin/final-project-ds/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	Dataset    *services.DatasetService
	Prediction *services.PredictionService
	Health     *services.HealthService

	gauges metric.Registration
}

// NewApplication loads the configuration and logger, then builds the application
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(ctx, cfg, logger)
}

// New wires the application from an explicit configuration. The dataset and
// the model are loaded before New returns; a failure of either is fatal.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices loads the dataset and the model concurrently
func (a *Application) initializeServices(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, config.StartupLoadTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(loadCtx)
	g.Go(func() error {
		dataset, err := services.LoadDataset(gctx, a.Paths.DatasetFile, a.Config.Dataset, a.Metrics, a.Logger)
		if err != nil {
			return err
		}
		a.Dataset = dataset
		return nil
	})
	g.Go(func() error {
		model, err := services.LoadModel(gctx, a.Paths.ModelFile, a.Config.Prediction, a.Metrics, a.Logger)
		if err != nil {
			return err
		}
		a.Prediction = model
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, mismatch := range a.Prediction.VocabularyMismatches() {
		a.Logger.WarnContext(ctx, "Configured category unknown to the model",
			slog.String("detail", mismatch),
			slog.String("model", a.Prediction.ModelName()))
	}

	gauges, err := infrastructure.RegisterDatasetGauges(a.OTelProviders.Meter, a.Dataset.Gauges())
	if err != nil {
		return fmt.Errorf("failed to register dataset gauges: %w", err)
	}
	a.gauges = gauges

	a.Health = services.NewHealthService(a.Dataset, a.Prediction, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.isDevelopmentMode())

	// Only middleware that leaves the ResponseWriter unwrapped runs in
	// front of the WebSocket route
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}

	validator := customMiddleware.NewValidator(a.Logger)
	predictionHandler := handlers.NewPredictionHandler(
		a.Prediction,
		validator,
		a.Config.WebSocket,
		a.Config.Security.AllowedOrigins,
		wsMetrics,
		a.Logger,
		errorHandler,
	)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Get(config.WebSocketPredictPath, predictionHandler.Stream)

	pagesHandler, err := handlers.NewPagesHandler(a.Logger, errorHandler)
	if err != nil {
		return err
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(errorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		a.setupAPIRoutes(r, errorHandler, pagesHandler, predictionHandler)
	})

	// Prometheus scrape endpoint, outside the middleware group
	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler, pages *handlers.PagesHandler, prediction *handlers.PredictionHandler) {
	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	r.Mount(config.HealthEndpoint, healthHandler.Routes())
	r.Get(config.APIBasePath+"/version", healthHandler.Version)

	r.Mount(config.PagesEndpoint, pages.Routes())
	r.Mount(config.EDAEndpoint, handlers.NewEDAHandler(a.Dataset, a.Logger, errorHandler).Routes())

	// Failed prediction requests are logged with their body
	r.With(apierrors.NewErrorMiddleware(errorHandler, a.Logger).Handler).
		Mount(config.PredictionEndpoint, prediction.Routes())
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cors := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	if a.isDevelopmentMode() {
		cors.AllowedOrigins = append(cors.AllowedOrigins,
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		)
	}

	a.Logger.Info("CORS configured",
		slog.String("environment", a.Config.Telemetry.Environment),
		slog.Any("allowed_origins", cors.AllowedOrigins))
	return cors
}

// isDevelopmentMode detects if we're running in development mode
func (a *Application) isDevelopmentMode() bool {
	if env := os.Getenv("GO_ENV"); env == "development" {
		return true
	}
	return a.Config.Telemetry.Environment == "development"
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server. A listener failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if !a.Health.Ready(ctx) {
		a.Logger.WarnContext(ctx, "Startup readiness check failed",
			slog.Any("services", a.Health.ReadinessCheck(ctx).Services))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)),
		slog.String("dataset", a.Dataset.Info().Fingerprint),
		slog.String("model", a.Prediction.ModelName()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.gauges != nil {
		if err := a.gauges.Unregister(); err != nil {
			a.Logger.WarnContext(ctx, "Failed to unregister dataset gauges", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(context.Background(), "Server stopped unexpectedly")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
