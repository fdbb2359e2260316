package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"futuremap/application/session"
	"futuremap/infrastructure/config"
	"futuremap/infrastructure/export"
	"futuremap/infrastructure/observability"
	"futuremap/infrastructure/remote"
	"futuremap/interfaces/http/rest"
	"futuremap/pkg/auth"
	pkgerrors "futuremap/pkg/errors"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Collector    *observability.Collector
	Tracer       *observability.TracerProvider
	Events       *observability.EventRecorder
	Catalog      *remote.CatalogClient
	PathStore    *remote.PathStoreClient
	Exporter     *export.Exporter
	Registry     *session.Registry
	Validator    *auth.JWTValidator
	RateLimiter  *auth.RateLimiter
	ErrorHandler *pkgerrors.ErrorHandler
	Router       *rest.Router
	Watcher      *config.Watcher
}

// Shutdown stops the config watcher and flushes traces. Errors are collected, not fatal.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	if c.Tracer != nil {
		if err := c.Tracer.Shutdown(ctx); err != nil {
			c.Logger.Error("Error during tracer shutdown", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}
	c.Logger.Info("Container shutdown completed successfully")
	return nil
}
