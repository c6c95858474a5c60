package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        string
}

// GeminiConfig holds the generation backend settings. The API key stays
// server-side only; it is never sent to or readable by the client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// ObservabilityConfig holds tracing and metrics settings. OTLPEndpoint may be
// empty, in which case spans stay in-process; the Prometheus metrics endpoint
// is always served.
type ObservabilityConfig struct {
	MetricsPort  string
	OTLPEndpoint string
}

type Config struct {
	Repositories  RepositoriesConfig
	JWT           JWTConfig
	Gemini        GeminiConfig
	Observability ObservabilityConfig
	ServerPort    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "tripwise"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		JWT: JWTConfig{
			SecretKey:       getEnvOrDefault("JWT_SECRET_KEY", ""),
			AccessTokenTTL:  getEnvDurationOrDefault("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTokenTTL: getEnvDurationOrDefault("JWT_REFRESH_TTL", 7*24*time.Hour),
			Issuer:          getEnvOrDefault("JWT_ISSUER", "tripwise"),
			Audience:        getEnvOrDefault("JWT_AUDIENCE", "tripwise-app"),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnvOrDefault("GEMINI_API_KEY", ""),
			Model:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
			Temperature:     getEnvFloatOrDefault("GEMINI_TEMPERATURE", 0.7),
			MaxOutputTokens: 4096,
		},
		Observability: ObservabilityConfig{
			MetricsPort:  getEnvOrDefault("METRICS_PORT", "9090"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(f)
		}
	}
	return defaultValue
}
