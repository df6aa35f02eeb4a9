package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"fielddash/internal/config"
	apierrors "fielddash/internal/errors"
	"fielddash/internal/exporter"
	"fielddash/internal/infrastructure"
	customMiddleware "fielddash/internal/middleware"
	"fielddash/internal/services"
	"fielddash/internal/session"
	transport "fielddash/internal/transport/http"
	"fielddash/pkg/contracts"
)

const (
	REPO_URL = "https://github.com/fielddash/fielddash"
	AppName  = "FieldDash - Monitoramento Ambiental"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	ErrorHandler  *apierrors.ErrorHandler
	Store         *session.MemoryStore
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard  *services.DashboardService
	Health     *services.HealthService
	Rasterizer exporter.Rasterizer
}

// NewApplication loads the configuration and the logger, then builds the
// application from them
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Logging.Output != "console" {
		if err := appPaths(cfg).EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to ensure directories: %w", err)
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// appPaths lays out the resolved paths of cfg
func appPaths(cfg *config.Config) *config.Paths {
	paths := config.PathsFor(cfg.Paths.ExecutableDir)
	paths.LogsDir = cfg.Paths.LogsDir
	return paths
}

// New wires every component of the application from cfg
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("build_id", BuildID))

	appPaths(cfg).LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	a.Store = session.NewMemoryStore()
	if err := infrastructure.RegisterSessionGauge(a.OTelProviders.Meter, a.Store.Len); err != nil {
		return fmt.Errorf("failed to register session gauge: %w", err)
	}

	rasterizer := newRasterizer(a.Config.Export)
	a.Logger.Info("Image export configured",
		slog.String("mode", a.Config.Export.Rasterizer),
		slog.String("rasterizer", rasterizer.Name()),
		slog.Bool("available", rasterizer.Available()))

	dashboard, err := services.NewDashboardService(a.Store, services.DashboardOptions{
		Charts: services.ChartDefaults{
			TickCount:      a.Config.Charts.TickCount,
			Padding:        &a.Config.Charts.Padding,
			PrimaryColor:   a.Config.Charts.PrimaryColor,
			SecondaryColor: a.Config.Charts.SecondaryColor,
		},
		HTML:        exporter.NewHTMLRenderer(a.Config.Export.PlotlyURL, a.Config.Export.Height),
		Rasterizer:  rasterizer,
		RasterLimit: a.Config.Export.Concurrency,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create dashboard service: %w", err)
	}

	health := services.NewHealthService(contracts.Version, REPO_URL, BuildTime, BuildID, a.Store, rasterizer, a.Logger)

	a.Services = &ServiceContainer{
		Dashboard:  dashboard,
		Health:     health,
		Rasterizer: rasterizer,
	}
	return nil
}

// newRasterizer builds the chart image backend selected by cfg.Rasterizer
func newRasterizer(cfg config.ExportConfig) exporter.Rasterizer {
	chrome := func() exporter.Rasterizer {
		return exporter.NewChromeRasterizer(exporter.ChromeOptions{
			ExecPath:  cfg.ChromePath,
			Timeout:   cfg.Timeout,
			Width:     cfg.Width,
			Height:    cfg.Height,
			PlotlyURL: cfg.PlotlyURL,
		})
	}
	gochart := func() exporter.Rasterizer {
		return exporter.NewGoChartRasterizer(cfg.Width, cfg.Height)
	}

	switch cfg.Rasterizer {
	case config.RasterizerChrome:
		return chrome()
	case config.RasterizerGoChart:
		return gochart()
	case config.RasterizerNone:
		return exporter.Unavailable{}
	default:
		return exporter.FirstAvailable(chrome(), gochart())
	}
}

// setupRouter configures the middleware chain and every route.
// Order: RequestID → RealIP → OTel → errors/recovery → security → CORS → rate limit
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	r.Use(otelMiddleware.Handler)

	r.Use(apierrors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
	r.Use(customMiddleware.DefaultSecureHeaders(a.Config.Export.PlotlyURL).Handler)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.ErrorHandler,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// The exporter only feeds a registry when Prometheus metrics are on
	if a.OTelProviders.Registry != nil {
		r.Handle(config.MetricsEndpoint, transport.NewMetricsHandler(a.OTelProviders.Registry))
	}

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler, a.Config.Security.MaxBodySize)

	healthHandler := transport.NewHealthHandler(a.Services.Health, a.Logger)
	dashboardHandler := transport.NewDashboardHandler(
		a.Services.Dashboard,
		validation,
		a.Config.Session.MaxUploadSize,
		a.Logger,
		a.ErrorHandler,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)
		r.Get("/capabilities", healthHandler.Capabilities)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuditLog(a.Logger))
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.ErrorHandler))
			r.Use(validation.ValidateRequest)
			r.Mount("/sessions", dashboardHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the background sweeper and serves on ln until Stop. Serve
// errors other than a clean shutdown are reported on the returned channel.
func (a *Application) Start(ctx context.Context, ln net.Listener) <-chan error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	go session.RunSweeper(infrastructure.EnsureTraceID(ctx), a.Store, a.Config.Session.SweepInterval, a.Config.Session.TTL,
		a.Logger.With(slog.String("component", "session_sweeper")))

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", "http://"+ln.Addr().String()))

	return errCh
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Int("sessions_dropped", a.Store.Len()))
	return infrastructure.CloseLogFile()
}

// Run serves until ctx is cancelled or the server fails, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := a.Start(ctx, ln)

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	case serveErr = <-errCh:
		if serveErr != nil {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", serveErr.Error()))
		}
	}

	if err := a.Stop(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return serveErr
}
