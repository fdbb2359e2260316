//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"futuremap/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideCollector,
	ProvideTracerProvider,
	ProvideEventRecorder,
	ProvideHTTPClient,
	ProvideCatalogClient,
	ProvidePathStoreClient,
	ProvideExporter,
	ProvideSessionSettings,
	ProvideRegistry,
	ProvideJWTValidator,
	ProvideRateLimiter,
	ProvideErrorHandler,
	ProvideRouter,
	ProvideWatcher,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
