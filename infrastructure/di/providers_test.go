package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"futuremap/infrastructure/config"
)

func TestInitializeContainer_Development(t *testing.T) {
	cfg := config.Defaults()
	cfg.EnableMetrics = true

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.NotNil(t, c.Logger)
	assert.NotNil(t, c.Collector)
	assert.Nil(t, c.Tracer)
	assert.NotNil(t, c.Registry)
	assert.NotNil(t, c.Validator)
	assert.NotNil(t, c.RateLimiter)
	assert.NotNil(t, c.Router)
	assert.NotNil(t, c.Router.Setup())
	assert.Equal(t, 30, c.Registry.Settings().Grid.Size())
}

func TestProvideJWTValidator(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		secret      string
		wantErr     bool
	}{
		{name: "configured secret", environment: "staging", secret: "s3cret"},
		{name: "development fallback", environment: "development"},
		{name: "missing outside development", environment: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Environment = tt.environment
			cfg.Auth.JWTSecret = tt.secret

			v, err := ProvideJWTValidator(cfg, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, v)
		})
	}
}

func TestProvideLogger_RejectsUnknownLevel(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogLevel = "loud"

	_, err := ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideOptionalComponents(t *testing.T) {
	cfg := config.Defaults()
	cfg.Auth.RateLimitRPS = 0

	assert.Nil(t, ProvideCollector(cfg))
	assert.Nil(t, ProvideRateLimiter(cfg))

	tp, err := ProvideTracerProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestProvideWatcher_UpdatesSessionPolicies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("canvas:\n  auto_connect: true\n"), 0o644))

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	require.True(t, cfg.IsDevelopment())

	settings, err := ProvideSessionSettings(cfg)
	require.NoError(t, err)
	registry := ProvideRegistry(settings, nil, nil, nil, nil, zap.NewNop())

	watcher, err := ProvideWatcher(cfg, registry, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("canvas:\n  auto_connect: false\n  proximity_threshold: 60\n"), 0o644))

	assert.Eventually(t, func() bool {
		p := registry.Settings().Placement
		return !p.AutoConnect && p.ProximityThreshold == 60
	}, 3*time.Second, 20*time.Millisecond)
}
