package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SupabaseURL    string
	SupabaseKey    string
	JWTSecret      string
	Port           string
	Environment    string
	AllowedOrigins []string
	// QueryTimeout bounds every Supabase round-trip so a slow store
	// cannot hang a request past client-visible latency limits.
	QueryTimeout time.Duration
}

func NewConfig() *Config {
	allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := []string{"http://localhost:3000"}
	if allowedOriginsStr != "" {
		allowedOrigins = strings.Split(allowedOriginsStr, ",")
	}

	queryTimeout := 5 * time.Second
	if v := os.Getenv("QUERY_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			queryTimeout = time.Duration(secs) * time.Second
		}
	}

	return &Config{
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_ANON_KEY"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", "medcair-secret-key-change-in-production"),
		Port:           getEnvOrDefault("PORT", "8080"),
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		AllowedOrigins: allowedOrigins,
		QueryTimeout:   queryTimeout,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
