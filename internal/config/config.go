// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig configures the workflow API (cmd/server)
type ServerConfig struct {
	Port        string        `env:"PORT"                envDefault:"8080"`
	BackendURL  string        `env:"BACKEND_URL"         envDefault:"http://127.0.0.1:5500"`
	JWTSecret   string        `env:"JWT_SECRET"          envDefault:"future-customer-dev-secret"`
	SessionTTL  time.Duration `env:"SESSION_TTL"         envDefault:"2h"`
	ToastTTL    time.Duration `env:"TOAST_TTL"           envDefault:"3s"`
	CORSOrigins []string      `env:"CORS_ORIGINS"        envDefault:"*" envSeparator:","`
	LogLevel    string        `env:"LOG_LEVEL"           envDefault:"info"`
	Gateway     GatewayConfig `envPrefix:"GATEWAY_"`
}

// GatewayConfig tunes the backend HTTP client
type GatewayConfig struct {
	Timeout     time.Duration `env:"TIMEOUT"      envDefault:"120s"`
	MaxRetries  int           `env:"MAX_RETRIES"  envDefault:"3"`
	BackoffBase time.Duration `env:"BACKOFF_BASE" envDefault:"1s"`
}

// SimulatorConfig configures the simulation backend (cmd/simulator, cmd/seed)
type SimulatorConfig struct {
	Port     string        `env:"PORT"      envDefault:"5500"`
	MongoURI string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string        `env:"MONGO_DB"  envDefault:"futurecustomer"`
	RedisURI string        `env:"REDIS_URI" envDefault:"localhost:6379"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
	AI       AIConfig
}

// LoadServer reads ServerConfig from the environment
func LoadServer() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := parseEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.Gateway.MaxRetries < 1 {
		return nil, fmt.Errorf("GATEWAY_MAX_RETRIES must be at least 1, got %d", cfg.Gateway.MaxRetries)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return &cfg, nil
}

// LoadSimulator reads SimulatorConfig from the environment
func LoadSimulator() (*SimulatorConfig, error) {
	var cfg SimulatorConfig
	if err := parseEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RedisAddr strips the scheme go-redis does not expect in Addr
func (c *SimulatorConfig) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func SlogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
