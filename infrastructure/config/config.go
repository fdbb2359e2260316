package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"futuremap/domain/core/valueobjects"
	domainservices "futuremap/domain/services"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Logging
	LogLevel string `yaml:"log_level"`

	Backend   BackendConfig         `yaml:"backend"`
	Auth      AuthConfig            `yaml:"auth"`
	Canvas    CanvasConfig          `yaml:"canvas"`
	Analytics domainservices.Policy `yaml:"analytics"`
	Session   SessionConfig         `yaml:"session"`

	// Feature flags
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	EnableCORS    bool   `yaml:"enable_cors"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	// ConfigFile is the YAML file the config was read from, if any
	ConfigFile string `yaml:"-"`
}

// BackendConfig points at the remote catalog and path store
type BackendConfig struct {
	BaseURL             string        `yaml:"base_url"`
	CatalogPath         string        `yaml:"catalog_path"`
	SavePath            string        `yaml:"save_path"`
	LoadPath            string        `yaml:"load_path"`
	Timeout             time.Duration `yaml:"timeout"`
	BreakerMaxFailures  uint32        `yaml:"breaker_max_failures"`
	BreakerOpenInterval time.Duration `yaml:"breaker_open_interval"`
}

// AuthConfig configures bearer token validation and request throttling
type AuthConfig struct {
	JWTSecret      string  `yaml:"jwt_secret"`
	JWTIssuer      string  `yaml:"jwt_issuer"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// CanvasConfig holds the placement grid and auto-connect policy
type CanvasConfig struct {
	GridSize           int  `yaml:"grid_size"`
	MaxX               int  `yaml:"max_x"`
	MaxY               int  `yaml:"max_y"`
	ProximityThreshold int  `yaml:"proximity_threshold"`
	AutoConnect        bool `yaml:"auto_connect"`
}

// SessionConfig controls in-memory workspace retention
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() *Config {
	return &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		LogLevel:      "info",
		Backend: BackendConfig{
			BaseURL:             "http://localhost/backend",
			CatalogPath:         "flashcards_api.php?action=getFlashcards",
			SavePath:            "career_paths_api.php",
			LoadPath:            "get_career_paths.php",
			Timeout:             10 * time.Second,
			BreakerMaxFailures:  5,
			BreakerOpenInterval: 30 * time.Second,
		},
		Auth: AuthConfig{
			JWTIssuer:      "futuremap",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Canvas: CanvasConfig{
			GridSize:           valueobjects.DefaultGridSize,
			MaxX:               valueobjects.DefaultMaxX,
			MaxY:               valueobjects.DefaultMaxY,
			ProximityThreshold: 100,
			AutoConnect:        true,
		},
		Analytics: domainservices.DefaultPolicy(),
		Session: SessionConfig{
			IdleTimeout:   2 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		EnableCORS:     true,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// LoadConfig loads defaults, then the YAML file named by CONFIG_FILE, then
// environment variables, and validates the result
func LoadConfig() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is LoadConfig with an explicit file path. An empty path skips the file layer.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Backend.BaseURL = getEnv("BACKEND_BASE_URL", c.Backend.BaseURL)
	c.Backend.Timeout = getEnvDuration("BACKEND_TIMEOUT", c.Backend.Timeout)

	// Authentication
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.JWTIssuer = getEnv("JWT_ISSUER", c.Auth.JWTIssuer)

	// Canvas
	c.Canvas.GridSize = getEnvInt("GRID_SIZE", c.Canvas.GridSize)
	c.Canvas.MaxX = getEnvInt("CANVAS_MAX_X", c.Canvas.MaxX)
	c.Canvas.MaxY = getEnvInt("CANVAS_MAX_Y", c.Canvas.MaxY)
	c.Canvas.ProximityThreshold = getEnvInt("PROXIMITY_THRESHOLD", c.Canvas.ProximityThreshold)
	c.Canvas.AutoConnect = getEnvBool("AUTO_CONNECT", c.Canvas.AutoConnect)

	// Features
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.OTLPEndpoint = getEnv("OTLP_ENDPOINT", c.OTLPEndpoint)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if _, err := c.Grid(); err != nil {
		return fmt.Errorf("invalid canvas config: %w", err)
	}
	if c.Canvas.ProximityThreshold < 0 {
		return fmt.Errorf("PROXIMITY_THRESHOLD cannot be negative")
	}
	if c.Analytics.MonthsPerCard < 0 {
		return fmt.Errorf("analytics.months_per_card cannot be negative")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.EnableTracing && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP_ENDPOINT is required when tracing is enabled")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// Grid builds the placement grid
func (c *Config) Grid() (valueobjects.Grid, error) {
	return valueobjects.NewGrid(c.Canvas.GridSize, c.Canvas.MaxX, c.Canvas.MaxY)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
