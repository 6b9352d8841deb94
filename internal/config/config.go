package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Snapshot backends selectable with STORE_BACKEND.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinIO    = "minio"
)

type Config struct {
	ServerAddr string
	JWTSecret  string
	TokenTTL   time.Duration
	LogLevel   slog.Level

	StoreBackend string
	StorePath    string

	RedisURL string
	RedisKey string

	DatabaseURL string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory. It panics when required values
// are missing or malformed.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the environment only.
func FromEnv() *Config {
	cfg := &Config{
		ServerAddr:     envOrDefault("SERVER_ADDR", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		LogLevel:       parseLogLevel(os.Getenv("LOG_LEVEL")),
		StoreBackend:   strings.ToLower(envOrDefault("STORE_BACKEND", BackendFile)),
		StorePath:      envOrDefault("STORE_PATH", "data/snapshot.json"),
		RedisURL:       envOrDefault("REDIS_URL", "redis://localhost:6379"),
		RedisKey:       envOrDefault("REDIS_KEY", "teams:snapshot"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    envOrDefault("MINIO_BUCKET", "teams"),
	}

	ttl, err := time.ParseDuration(envOrDefault("TOKEN_TTL", "24h"))
	if err != nil {
		panic(fmt.Sprintf("invalid TOKEN_TTL: %v", err))
	}
	cfg.TokenTTL = ttl

	var missing []string
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch cfg.StoreBackend {
	case BackendFile, BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendMinIO:
		if cfg.MinIOEndpoint == "" {
			missing = append(missing, "MINIO_ENDPOINT")
		}
	default:
		panic(fmt.Sprintf("unknown STORE_BACKEND %q", cfg.StoreBackend))
	}
	if len(missing) > 0 {
		panic(fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
