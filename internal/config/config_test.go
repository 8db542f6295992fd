package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Environment: "development",
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 30 * time.Second,
		},
		Bulk: BulkConfig{
			Concurrency:    1,
			JournalEnabled: true,
			JournalPath:    "backoffice.db",
		},
		Export: ExportConfig{
			Separator: ";",
			PageSize:  100,
			MaxPages:  10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		MockAPI: MockAPIConfig{
			Port: "8080",
		},
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"Production environment", "production", true},
		{"Development environment", "development", false},
		{"Empty environment", "", false},
		{"Other environment", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.env}
			if got := cfg.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Environment: "development"}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() should return true for development environment")
	}

	cfg.Environment = "production"
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() should return false for production environment")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *Config)
		expectError   bool
		errorContains string
	}{
		{"Valid development config", func(c *Config) {}, false, ""},
		{"Missing base URL", func(c *Config) { c.API.BaseURL = "" }, true, "api.base_url"},
		{"Relative base URL", func(c *Config) { c.API.BaseURL = "/api" }, true, "absolute"},
		{"Production over http", func(c *Config) { c.Environment = "production" }, true, "https"},
		{"Valid production config", func(c *Config) {
			c.Environment = "production"
			c.API.BaseURL = "https://api.example.com"
		}, false, ""},
		{"Zero timeout", func(c *Config) { c.API.Timeout = 0 }, true, "api.timeout"},
		{"Rate limiter enabled with zero RPS", func(c *Config) {
			c.RateLimiter = RateLimiterConfig{Enabled: true, RPS: 0, Burst: 20}
		}, true, "rps"},
		{"Rate limiter enabled with zero burst", func(c *Config) {
			c.RateLimiter = RateLimiterConfig{Enabled: true, RPS: 10, Burst: 0}
		}, true, "burst"},
		{"Disabled rate limiter ignores values", func(c *Config) {
			c.RateLimiter = RateLimiterConfig{Enabled: false}
		}, false, ""},
		{"Zero concurrency", func(c *Config) { c.Bulk.Concurrency = 0 }, true, "bulk.concurrency"},
		{"Too much concurrency", func(c *Config) { c.Bulk.Concurrency = 100 }, true, "bulk.concurrency"},
		{"Journal without path", func(c *Config) { c.Bulk.JournalPath = "" }, true, "journal_path"},
		{"Journal disabled without path", func(c *Config) {
			c.Bulk.JournalEnabled = false
			c.Bulk.JournalPath = ""
		}, false, ""},
		{"Multi-character separator", func(c *Config) { c.Export.Separator = ";;" }, true, "separator"},
		{"Quote separator", func(c *Config) { c.Export.Separator = `"` }, true, "separator"},
		{"Unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, true, "logging.level"},
		{"Unknown log format", func(c *Config) { c.Logging.Format = "xml" }, true, "logging.format"},
		{"File logging without path", func(c *Config) { c.Logging.File.Enabled = true }, true, "logging.file.path"},
		{"Mock API without port", func(c *Config) { c.MockAPI.Port = "" }, true, "mockapi.port"},
		{"Mock API auth with weak secret", func(c *Config) {
			c.MockAPI.RequireAuth = true
			c.MockAPI.JWTSecret = "short"
		}, true, "jwt_secret"},
		{"Mock API rate limit with zero burst", func(c *Config) {
			c.MockAPI.RateLimit = RateLimiterConfig{Enabled: true, RPS: 5}
		}, true, "mockapi.rate_limit.burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorContains, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config with defaults: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("Expected default base URL, got %s", cfg.API.BaseURL)
	}
	if cfg.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", cfg.Environment)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.API.Timeout)
	}
	if cfg.Bulk.Concurrency != 1 {
		t.Errorf("Expected sequential bulk by default, got %d", cfg.Bulk.Concurrency)
	}
	if cfg.Export.SeparatorRune() != ';' {
		t.Errorf("Expected ';' separator, got %q", cfg.Export.SeparatorRune())
	}
	if cfg.Validation.StrictSubchecks {
		t.Error("Expected fail-open sub-checks by default")
	}
}

func TestLoadConfig_WithEnvironmentVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_BULK_CONCURRENCY", "4")
	t.Setenv("APP_ENVIRONMENT", "test")
	t.Setenv("BACKOFFICE_TOKEN", "env-token")
	t.Setenv("BACKOFFICE_API_URL", "https://staging.example.com/api")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Bulk.Concurrency != 4 {
		t.Errorf("Expected concurrency from env 4, got %d", cfg.Bulk.Concurrency)
	}
	if cfg.Environment != "test" {
		t.Errorf("Expected environment from env 'test', got %s", cfg.Environment)
	}
	if cfg.Auth.Token != "env-token" {
		t.Errorf("Expected token from BACKOFFICE_TOKEN, got %q", cfg.Auth.Token)
	}
	if cfg.API.BaseURL != "https://staging.example.com/api" {
		t.Errorf("Expected base URL from BACKOFFICE_API_URL, got %s", cfg.API.BaseURL)
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backoffice.yaml")
	content := `
api:
  base_url: https://api.example.com/v1
  timeout: 5s
validation:
  strict_subchecks: true
export:
  separator: ","
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", cfg.API.Timeout)
	}
	if !cfg.Validation.StrictSubchecks {
		t.Error("Expected strict sub-checks from file")
	}
	if cfg.Export.SeparatorRune() != ',' {
		t.Errorf("Expected ',' separator, got %q", cfg.Export.SeparatorRune())
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for a missing explicit config file")
	}
}
