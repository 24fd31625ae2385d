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

	"huntstats/internal/config"
	"huntstats/internal/dataprocessing"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/infrastructure"
	customMiddleware "huntstats/internal/middleware"
	"huntstats/internal/operations"
	"huntstats/internal/services"
	handlers "huntstats/internal/transport/http"
)

// Application wires configuration, telemetry, services and the HTTP server
type Application struct {
	Config         *config.Config
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.PipelineMetrics
	Store          *services.MemoryDatasetStore
	Registry       *operations.Registry
	Pipeline       *operations.Pipeline
	DatasetService *services.DatasetService
	HealthService  *services.HealthService
	Router         *chi.Mux
	Server         *http.Server

	stopRetention context.CancelFunc
	retentionDone chan struct{}
}

// NewApplication loads the configuration and logger from the environment
// and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from an explicit configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
	}

	if err := a.initializeServices(); err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// initializeServices builds the pipeline and the services on top of it
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.NewPipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	a.Metrics = metrics

	opts, err := dataprocessing.OptionsFromConfig(a.Config.Processing)
	if err != nil {
		return err
	}

	a.Registry = operations.NewDefaultRegistry(opts)
	a.Pipeline = operations.NewPipeline(a.Registry,
		operations.WithLogger(a.Logger),
		operations.WithTracer(operations.NewStepTracer(a.OTelProviders.Tracer, metrics)))

	a.Store = services.NewMemoryDatasetStore()
	a.DatasetService = services.NewDatasetService(a.Store, a.Pipeline, metrics, a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, a.Store, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → Recovery → OTel → request log → security headers.
func (a *Application) setupRouter() {
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)
	otelMiddleware := customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger)

	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(apperrors.RecoveryMiddleware(errorHandler))
	r.Use(otelMiddleware.Handler)
	r.Use(apperrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	validator := customMiddleware.NewValidator(a.Logger, errorHandler, customMiddleware.DefaultMaxBodySize, a.Registry.ListIDs())
	datasetHandler := handlers.NewDatasetHandler(a.DatasetService, validator, a.Logger, errorHandler, a.Config.Data.MaxUploadBytes)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.NewRateLimiter(a.Config.Server.RateLimitRPS, a.Config.Server.RateLimitBurst, a.Logger).Handler)
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/datasets", datasetHandler.Routes())
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Preload loads the datasets named in the data section of the config.
// Nothing is loaded when no file is configured.
func (a *Application) Preload(ctx context.Context) ([]*services.Dataset, error) {
	var paths []string
	for _, p := range []string{a.Config.Data.MonsterFile, a.Config.Data.CharacterFile} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}

	datasets, err := a.DatasetService.LoadFiles(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to preload datasets: %w", err)
	}
	for _, ds := range datasets {
		if err := a.Store.Pin(ds.ID); err != nil {
			return nil, err
		}
		a.Logger.InfoContext(ctx, "dataset preloaded",
			slog.String("dataset_id", ds.ID),
			slog.String("name", ds.Name),
			slog.Int("rows", ds.Table.Len()))
	}
	return datasets, nil
}

// SweepExpired removes the datasets older than the configured retention
// and returns how many were removed. A zero retention keeps everything.
func (a *Application) SweepExpired(ctx context.Context) int {
	retention := a.Config.Data.Retention
	if retention <= 0 {
		return 0
	}
	removed := a.Store.CleanupOlderThan(retention)
	if removed > 0 {
		a.Logger.InfoContext(ctx, "expired datasets removed",
			slog.Int("removed", removed),
			slog.Int("remaining", a.Store.Count()),
			slog.Duration("retention", retention))
	}
	return removed
}

// retentionInterval is how often the store is swept
func retentionInterval(retention time.Duration) time.Duration {
	interval := retention / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	return interval
}

// runRetention sweeps the store every interval until ctx is done
func (a *Application) runRetention(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.SweepExpired(ctx)
		}
	}
}

// startRetention runs the sweeper in the background. It is a no-op when
// retention is disabled.
func (a *Application) startRetention(interval time.Duration) {
	if a.Config.Data.Retention <= 0 || a.stopRetention != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopRetention = cancel
	a.retentionDone = make(chan struct{})
	go func() {
		defer close(a.retentionDone)
		a.runRetention(ctx, interval)
	}()
}

func (a *Application) stopRetentionLoop() {
	if a.stopRetention == nil {
		return
	}
	a.stopRetention()
	<-a.retentionDone
	a.stopRetention = nil
}

// Start preloads configured datasets, starts the retention sweeper and
// starts serving in the background. Serve errors are reported on the
// returned channel.
func (a *Application) Start(ctx context.Context) (<-chan error, error) {
	if _, err := a.Preload(ctx); err != nil {
		return nil, err
	}
	a.startRetention(retentionInterval(a.Config.Data.Retention))

	errCh := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh, nil
}

// Stop shuts the server down and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.InfoContext(ctx, "Shutting down")
	a.stopRetentionLoop()

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh, err := a.Start(ctx)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		a.Logger.Info("Received interrupt signal")
	case err := <-errCh:
		if err != nil {
			_ = a.Stop(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	}

	start := time.Now()
	err = a.Stop(context.Background())
	a.Logger.Info("Application stopped", slog.Duration("shutdown", time.Since(start)))
	return err
}
