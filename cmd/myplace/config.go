package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL        string
	Addr               string
	AllowedOrigins     []string
	JWTSecret          string
	JWTTTL             time.Duration
	MediaSigningSecret string
	DBConnectTimeout   time.Duration
	LogLevel           string
	LogFormat          string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	// Without the signing secret every upload signature request would
	// fail, so refuse to start at all.
	signingSecret := os.Getenv("MEDIA_SIGNING_SECRET")
	if signingSecret == "" {
		return Config{}, errors.New("MEDIA_SIGNING_SECRET env var is required")
	}

	ttl, err := time.ParseDuration(envOrDefault("JWT_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JWT_TTL: %w", err)
	}

	connectTimeout, err := time.ParseDuration(envOrDefault("DB_CONNECT_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONNECT_TIMEOUT: %w", err)
	}

	addr := fmt.Sprintf(":%s", envOrDefault("PORT", "8080"))

	origins := parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	return Config{
		DatabaseURL:        dsn,
		Addr:               addr,
		AllowedOrigins:     origins,
		JWTSecret:          jwtSecret,
		JWTTTL:             ttl,
		MediaSigningSecret: signingSecret,
		DBConnectTimeout:   connectTimeout,
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
