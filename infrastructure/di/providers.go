package di

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"futuremap/application/services"
	"futuremap/application/session"
	"futuremap/infrastructure/config"
	"futuremap/infrastructure/export"
	"futuremap/infrastructure/observability"
	"futuremap/infrastructure/remote"
	"futuremap/interfaces/http/rest"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

const developmentJWTSecret = "development-secret-change-in-production"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}

	return zcfg.Build()
}

// ProvideCollector creates the Prometheus collector, or nil when metrics are off
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("futuremap")
}

// ProvideTracerProvider installs the OTLP exporter, or returns nil when tracing is off
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, error) {
	if !cfg.EnableTracing {
		return nil, nil
	}
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "futuremap-api",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	return tp, nil
}

// ProvideEventRecorder creates the domain event publisher
func ProvideEventRecorder(logger *zap.Logger, collector *observability.Collector) *observability.EventRecorder {
	return observability.NewEventRecorder(logger, collector)
}

// ProvideHTTPClient creates the client shared by the backend adapters
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Backend.Timeout}
}

func clientConfig(cfg *config.Config) remote.ClientConfig {
	return remote.ClientConfig{
		BaseURL:             cfg.Backend.BaseURL,
		Timeout:             cfg.Backend.Timeout,
		BreakerMaxFailures:  cfg.Backend.BreakerMaxFailures,
		BreakerOpenInterval: cfg.Backend.BreakerOpenInterval,
	}
}

// ProvideCatalogClient creates the catalog source
func ProvideCatalogClient(cfg *config.Config, httpClient *http.Client, collector *observability.Collector, logger *zap.Logger) *remote.CatalogClient {
	return remote.NewCatalogClient(clientConfig(cfg), cfg.Backend.CatalogPath, httpClient, collector, logger)
}

// ProvidePathStoreClient creates the path store
func ProvidePathStoreClient(cfg *config.Config, httpClient *http.Client, collector *observability.Collector, logger *zap.Logger) *remote.PathStoreClient {
	return remote.NewPathStoreClient(clientConfig(cfg), cfg.Backend.SavePath, cfg.Backend.LoadPath, httpClient, collector, logger)
}

// ProvideExporter creates the PNG/PDF renderer
func ProvideExporter(cfg *config.Config, logger *zap.Logger) (*export.Exporter, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	return export.NewExporter(grid, logger)
}

// ProvideSessionSettings derives the per-session engine settings
func ProvideSessionSettings(cfg *config.Config) (session.Settings, error) {
	grid, err := cfg.Grid()
	if err != nil {
		return session.Settings{}, err
	}
	return session.Settings{
		Grid:      grid,
		Placement: placementPolicy(cfg),
		Analytics: cfg.Analytics,
	}, nil
}

func placementPolicy(cfg *config.Config) services.PlacementPolicy {
	return services.PlacementPolicy{
		AutoConnect:        cfg.Canvas.AutoConnect,
		ProximityThreshold: cfg.Canvas.ProximityThreshold,
	}
}

// ProvideRegistry creates the session registry with every collaborator attached
func ProvideRegistry(
	settings session.Settings,
	catalog *remote.CatalogClient,
	store *remote.PathStoreClient,
	exporter *export.Exporter,
	recorder *observability.EventRecorder,
	logger *zap.Logger,
) *session.Registry {
	return session.NewRegistry(settings, services.Dependencies{
		Catalog:   catalog,
		Store:     store,
		Exporter:  exporter,
		Publisher: recorder,
	}, logger)
}

// ProvideJWTValidator creates the bearer token validator. Development falls
// back to a fixed secret; every other environment must configure one.
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("JWT_SECRET is required outside development")
		}
		logger.Warn("JWT_SECRET not set, using development secret")
		secret = developmentJWTSecret
	}
	return auth.NewJWTValidator(auth.JWTConfig{SecretKey: secret, Issuer: cfg.Auth.JWTIssuer})
}

// ProvideRateLimiter creates the per-caller limiter, or nil when disabled
func ProvideRateLimiter(cfg *config.Config) *auth.RateLimiter {
	if cfg.Auth.RateLimitRPS <= 0 {
		return nil
	}
	return auth.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)
}

// ProvideErrorHandler creates the JSON error responder
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	registry *session.Registry,
	validator *auth.JWTValidator,
	limiter *auth.RateLimiter,
	collector *observability.Collector,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(registry, validator, limiter, collector, errHandler, rest.Options{
		EnableCORS:     cfg.EnableCORS,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)
}

// ProvideWatcher reloads the config file in development and pushes new
// placement and analytics policies into live sessions
func ProvideWatcher(cfg *config.Config, registry *session.Registry, logger *zap.Logger) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	watcher.OnChange(func(updated *config.Config) {
		settings := registry.Settings()
		settings.Placement = placementPolicy(updated)
		settings.Analytics = updated.Analytics
		registry.UpdatePolicies(settings)
	})
	return watcher, nil
}
