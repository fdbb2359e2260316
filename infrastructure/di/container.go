//go:build !wireinject
// +build !wireinject

package di

import (
	"context"
	"fmt"

	"futuremap/infrastructure/config"
)

// InitializeContainer creates a fully wired container in dependency order
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	collector := ProvideCollector(cfg)
	tracer, err := ProvideTracerProvider(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	recorder := ProvideEventRecorder(logger, collector)

	httpClient := ProvideHTTPClient(cfg)
	catalog := ProvideCatalogClient(cfg, httpClient, collector, logger)
	store := ProvidePathStoreClient(cfg, httpClient, collector, logger)
	exporter, err := ProvideExporter(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	settings, err := ProvideSessionSettings(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid session settings: %w", err)
	}
	registry := ProvideRegistry(settings, catalog, store, exporter, recorder, logger)

	validator, err := ProvideJWTValidator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token validator: %w", err)
	}
	limiter := ProvideRateLimiter(cfg)
	errHandler := ProvideErrorHandler(cfg, logger)
	router := ProvideRouter(cfg, registry, validator, limiter, collector, errHandler, logger)

	watcher, err := ProvideWatcher(cfg, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start config watcher: %w", err)
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Collector:    collector,
		Tracer:       tracer,
		Events:       recorder,
		Catalog:      catalog,
		PathStore:    store,
		Exporter:     exporter,
		Registry:     registry,
		Validator:    validator,
		RateLimiter:  limiter,
		ErrorHandler: errHandler,
		Router:       router,
		Watcher:      watcher,
	}, nil
}
