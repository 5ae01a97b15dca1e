package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Source: SourceConfig{
			APIKey:       "test-key",
			BaseURL:      "https://api.rawg.io/api",
			FetchTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{DataPath: "/some/path"},
		Cache:   CacheConfig{Backend: CacheBadger, TTL: time.Hour},
		Dashboard: DashboardConfig{
			GenreConcurrency:   4,
			GenreFailurePolicy: GenreFailureAbort,
			DegeneratePolicy:   DegenerateSubstituteExample,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Source.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAWG_API_KEY")
}

func TestValidate_Policies(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"skip genre policy", func(c *Config) { c.Dashboard.GenreFailurePolicy = GenreFailureSkip }, true},
		{"unknown genre policy", func(c *Config) { c.Dashboard.GenreFailurePolicy = "retry" }, false},
		{"show empty", func(c *Config) { c.Dashboard.DegeneratePolicy = DegenerateShowEmpty }, true},
		{"unknown degenerate policy", func(c *Config) { c.Dashboard.DegeneratePolicy = "hide" }, false},
		{"zero concurrency", func(c *Config) { c.Dashboard.GenreConcurrency = 0 }, false},
		{"redis backend", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisURL = "redis://x:6379" }, true},
		{"redis without url", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.RedisURL = "" }, false},
		{"no cache", func(c *Config) { c.Cache.Backend = CacheNone }, true},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, false},
		{"zero fetch timeout", func(c *Config) { c.Source.FetchTimeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.expandDataPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "GameDash", "data"), cfg.Storage.DataPath)
}

func TestExpandDataPath_TildeExpansion(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "~/my-data"}}
	require.NoError(t, cfg.expandDataPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "my-data"), cfg.Storage.DataPath)
}

func TestExpandDataPath_RelativePath(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "relative/path"}}
	require.NoError(t, cfg.expandDataPath())

	assert.True(t, filepath.IsAbs(cfg.Storage.DataPath))
	assert.Contains(t, cfg.Storage.DataPath, "relative/path")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("TEST_INT", "7")
	assert.Equal(t, 7, getIntConfigValue("", "TEST_INT", 1))
	assert.Equal(t, 3, getIntConfigValue("3", "TEST_INT", 1))

	t.Setenv("TEST_INT", "seven")
	assert.Equal(t, 1, getIntConfigValue("", "TEST_INT", 1))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("yes", "UNSET_BOOL", false))
	assert.True(t, getBoolConfigValue("1", "UNSET_BOOL", false))
	assert.False(t, getBoolConfigValue("nope", "UNSET_BOOL", true))
	assert.True(t, getBoolConfigValue("", "UNSET_BOOL", true))
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("RAWG_API_KEY", "env-key")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-data-path", t.TempDir(),
		"-log-level", "debug",
		"-fetch-timeout", "3s",
		"-genre-failure-policy", "skip",
	})
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Source.APIKey)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 3*time.Second, cfg.Source.FetchTimeout)
	assert.Equal(t, GenreFailureSkip, cfg.Dashboard.GenreFailurePolicy)
	assert.Equal(t, DegenerateSubstituteExample, cfg.Dashboard.DegeneratePolicy)
	assert.Equal(t, 4, cfg.Dashboard.GenreConcurrency)
	assert.False(t, cfg.Dashboard.MinimumVisibleBar)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# local settings\nRAWG_API_KEY=file-key\nDASHBOARD_DEGENERATE_POLICY=\"showEmpty\"\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv sets real env vars; register them so the test cleans up.
	t.Setenv("RAWG_API_KEY", "")
	t.Setenv("DASHBOARD_DEGENERATE_POLICY", "")
	os.Unsetenv("RAWG_API_KEY")                //nolint:errcheck // Test setup
	os.Unsetenv("DASHBOARD_DEGENERATE_POLICY") //nolint:errcheck // Test setup

	cfg, err := LoadConfig([]string{"-env-file", envFile, "-data-path", dir})
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Source.APIKey)
	assert.Equal(t, DegenerateShowEmpty, cfg.Dashboard.DegeneratePolicy)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("RAWG_API_KEY", "k")

	_, err := LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-data-path", t.TempDir(),
		"-fetch-timeout", "soon",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAWG_FETCH_TIMEOUT")
}

func TestLoadConfig_AllowedOrigins(t *testing.T) {
	t.Setenv("RAWG_API_KEY", "k")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-data-path", t.TempDir(),
		"-allowed-origins", "http://localhost:5173, ,https://dash.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://dash.example.com"}, cfg.Server.AllowedOrigins)

	cfg, err = LoadConfig([]string{
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
		"-data-path", t.TempDir(),
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}
