package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainservices "futuremap/domain/services"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 30, cfg.Canvas.GridSize)
	assert.Equal(t, 340, cfg.Canvas.MaxX)
	assert.Equal(t, 460, cfg.Canvas.MaxY)
	assert.Equal(t, 100, cfg.Canvas.ProximityThreshold)
	assert.True(t, cfg.Canvas.AutoConnect)
	assert.Equal(t, 6, cfg.Analytics.MonthsPerCard)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
environment: staging
backend:
  base_url: https://api.example.com
  timeout: 3s
canvas:
  grid_size: 20
  auto_connect: false
analytics:
  months_per_card: 4
  budget_limits:
    Low: 150000
`)

	t.Setenv("GRID_SIZE", "25")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "career_paths_api.php", cfg.Backend.SavePath)
	assert.Equal(t, 25, cfg.Canvas.GridSize)
	assert.False(t, cfg.Canvas.AutoConnect)
	assert.Equal(t, 4, cfg.Analytics.MonthsPerCard)
	assert.Equal(t, 150000, cfg.Analytics.BudgetLimits[domainservices.BudgetLow])
	assert.Equal(t, 500000, cfg.Analytics.BudgetLimits[domainservices.BudgetMedium])
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "zero grid", mutate: func(c *Config) { c.Canvas.GridSize = 0 }, wantErr: true, errMsg: "grid size must be positive"},
		{name: "negative threshold", mutate: func(c *Config) { c.Canvas.ProximityThreshold = -1 }, wantErr: true, errMsg: "PROXIMITY_THRESHOLD"},
		{name: "missing backend", mutate: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: true, errMsg: "BACKEND_BASE_URL"},
		{name: "tracing without endpoint", mutate: func(c *Config) { c.EnableTracing = true }, wantErr: true, errMsg: "OTLP_ENDPOINT"},
		{name: "production needs secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true, errMsg: "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadFrom_BadFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	writeFile(t, path, "canvas: [not, a, map")
	_, err = LoadFrom(path)
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "canvas:\n  proximity_threshold: 100\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	w, err := newWatcher(cfg, zap.NewNop(), 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var seen atomic.Int64
	w.OnChange(func(c *Config) {
		seen.Store(int64(c.Canvas.ProximityThreshold))
	})

	writeFile(t, path, "canvas:\n  proximity_threshold: 150\n")

	assert.Eventually(t, func() bool { return seen.Load() == 150 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 150, w.Config().Canvas.ProximityThreshold)
}

func TestWatcher_DisabledOutsideDevelopment(t *testing.T) {
	cfg := Defaults()
	cfg.Environment = "staging"
	cfg.ConfigFile = "/does/not/matter.yaml"

	w, err := NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, w.watcher)
	w.Stop()
	w.Stop()
}
