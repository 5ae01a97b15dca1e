// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Source    SourceConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
	Media     MediaConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	Version     string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// RateLimit is the per-client request budget per second on the public API.
	RateLimit int
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// SourceConfig configures the RAWG catalog client.
type SourceConfig struct {
	APIKey       string
	BaseURL      string
	FetchTimeout time.Duration // per upstream fetch (default: 10s)
	RateLimit    int           // outbound requests per second (default: 5)
}

// StorageConfig holds on-disk locations.
type StorageConfig struct {
	// DataPath holds the badger cache, the sqlite snapshot database and the search index.
	DataPath string
}

// Cache backends.
const (
	CacheBadger = "badger"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// CacheConfig selects the upstream response cache.
type CacheConfig struct {
	Backend  string
	TTL      time.Duration
	RedisURL string
}

// Genre failure policies.
const (
	GenreFailureAbort = "abort"
	GenreFailureSkip  = "skip"
)

// Degenerate data policies.
const (
	DegenerateSubstituteExample = "substituteExample"
	DegenerateShowEmpty         = "showEmpty"
)

// DashboardConfig tunes the aggregation pipeline.
type DashboardConfig struct {
	GenreConcurrency   int
	GenreFailurePolicy string
	DegeneratePolicy   string
	MinimumVisibleBar  bool
}

// MediaConfig controls image post-processing.
type MediaConfig struct {
	BlurhashEnabled bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("gamedash", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	httpRateLimit := fs.String("http-rate-limit", "", "Requests per second per client (default: 20)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: any)")

	apiKey := fs.String("rawg-api-key", "", "RAWG API key")
	baseURL := fs.String("rawg-base-url", "", "RAWG API base URL")
	fetchTimeout := fs.String("fetch-timeout", "", "Per-fetch timeout for catalog requests (default: 10s)")
	sourceRateLimit := fs.String("rawg-rate-limit", "", "Outbound RAWG requests per second (default: 5)")

	dataPath := fs.String("data-path", "", "Directory for cache, snapshots and search index")

	cacheBackend := fs.String("cache-backend", "", "Response cache backend (badger, redis, none)")
	cacheTTL := fs.String("cache-ttl", "", "Response cache TTL (default: 1h)")
	redisURL := fs.String("redis-url", "", "Redis URL when cache-backend=redis")

	genreConcurrency := fs.String("genre-concurrency", "", "Parallel genre fetches (default: 4)")
	genrePolicy := fs.String("genre-failure-policy", "", "abort or skip (default: abort)")
	degeneratePolicy := fs.String("degenerate-policy", "", "substituteExample or showEmpty (default: substituteExample)")
	minVisibleBar := fs.String("min-visible-bar", "", "Floor displayed mode counts (default: false)")

	blurhash := fs.String("blurhash", "", "Compute blurhash placeholders for background images (default: true)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env file is fine; the process env still applies.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "APP_ENV", "development"),
			Version:     getConfigValue("", "APP_VERSION", "dev"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			RateLimit:      getIntConfigValue(*httpRateLimit, "HTTP_RATE_LIMIT", 20),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "CORS_ALLOWED_ORIGINS", "")),
		},
		Source: SourceConfig{
			APIKey:    getConfigValue(*apiKey, "RAWG_API_KEY", ""),
			BaseURL:   getConfigValue(*baseURL, "RAWG_BASE_URL", "https://api.rawg.io/api"),
			RateLimit: getIntConfigValue(*sourceRateLimit, "RAWG_RATE_LIMIT", 5),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Cache: CacheConfig{
			Backend:  strings.ToLower(getConfigValue(*cacheBackend, "CACHE_BACKEND", CacheBadger)),
			RedisURL: getConfigValue(*redisURL, "REDIS_URL", "redis://localhost:6379/0"),
		},
		Dashboard: DashboardConfig{
			GenreConcurrency:   getIntConfigValue(*genreConcurrency, "DASHBOARD_GENRE_CONCURRENCY", 4),
			GenreFailurePolicy: getConfigValue(*genrePolicy, "DASHBOARD_GENRE_FAILURE_POLICY", GenreFailureAbort),
			DegeneratePolicy:   getConfigValue(*degeneratePolicy, "DASHBOARD_DEGENERATE_POLICY", DegenerateSubstituteExample),
			MinimumVisibleBar:  getBoolConfigValue(*minVisibleBar, "DASHBOARD_MIN_VISIBLE_BAR", false),
		},
		Media: MediaConfig{
			BlurhashEnabled: getBoolConfigValue(*blurhash, "BLURHASH_ENABLED", true),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*fetchTimeout, "RAWG_FETCH_TIMEOUT", "10s", &cfg.Source.FetchTimeout},
		{*cacheTTL, "CACHE_TTL", "1h", &cfg.Cache.TTL},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Source.APIKey == "" {
		return errors.New("RAWG_API_KEY is required")
	}
	if c.Source.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	switch c.Cache.Backend {
	case CacheBadger, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s (must be badger, redis, or none)", c.Cache.Backend)
	}

	if c.Dashboard.GenreConcurrency < 1 {
		return fmt.Errorf("genre concurrency must be at least 1, got %d", c.Dashboard.GenreConcurrency)
	}
	if c.Dashboard.GenreFailurePolicy != GenreFailureAbort && c.Dashboard.GenreFailurePolicy != GenreFailureSkip {
		return fmt.Errorf("invalid genre failure policy: %s (must be abort or skip)", c.Dashboard.GenreFailurePolicy)
	}
	if c.Dashboard.DegeneratePolicy != DegenerateSubstituteExample && c.Dashboard.DegeneratePolicy != DegenerateShowEmpty {
		return fmt.Errorf("invalid degenerate policy: %s (must be substituteExample or showEmpty)", c.Dashboard.DegeneratePolicy)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/GameDash/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "GameDash", "data"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return n
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
