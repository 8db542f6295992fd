// Package config provides back-office client configuration management using Viper.
// It loads a YAML file and environment variables, then validates each section.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds all application configuration / Contient toute la configuration de l'application
type Config struct {
	Environment string            `mapstructure:"environment"`
	API         APIConfig         `mapstructure:"api"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Bulk        BulkConfig        `mapstructure:"bulk"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Export      ExportConfig      `mapstructure:"export"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	MockAPI     MockAPIConfig     `mapstructure:"mockapi"`
}

// APIConfig holds backend connection settings / Configuration de connexion au backend
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"` // Fixed per-request timeout / Timeout fixe par requête
	UserAgent string        `mapstructure:"user_agent"`
}

// RateLimiterConfig holds rate limiter configuration / Configuration limiteur de débit
type RateLimiterConfig struct {
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
	Enabled bool    `mapstructure:"enabled"`
}

// AuthConfig holds credential settings / Configuration des identifiants
type AuthConfig struct {
	Token      string        `mapstructure:"token"`
	TokenFile  string        `mapstructure:"token_file"`
	ExpirySkew time.Duration `mapstructure:"expiry_skew"` // Reject JWTs expiring within this window / Rejette les JWT expirant dans cette fenêtre
}

// BulkConfig holds batch runner settings / Configuration du runner de masse
type BulkConfig struct {
	Concurrency    int    `mapstructure:"concurrency"` // 1 keeps per-item calls sequential / 1 garde les appels séquentiels
	JournalEnabled bool   `mapstructure:"journal_enabled"`
	JournalPath    string `mapstructure:"journal_path"`
}

// ValidationConfig holds client-side validation settings / Configuration de la validation côté client
type ValidationConfig struct {
	StrictSubchecks bool `mapstructure:"strict_subchecks"` // Failed backend checks block instead of warn / Les vérifications en échec bloquent
}

// ExportConfig holds export settings / Configuration des exports
type ExportConfig struct {
	Directory string `mapstructure:"directory"`
	Separator string `mapstructure:"separator"`
	BOM       bool   `mapstructure:"bom"`
	PageSize  int    `mapstructure:"page_size"` // Rows fetched per page for the CSV fallback
	MaxPages  int    `mapstructure:"max_pages"`
}

// MetricsConfig holds metrics settings / Configuration des métriques
type MetricsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// LoggingConfig holds logging configuration / Configuration logging
type LoggingConfig struct {
	Level         string            `mapstructure:"level"`
	Format        string            `mapstructure:"format"`
	File          FileLogConfig     `mapstructure:"file"`
	LokiEnabled   bool              `mapstructure:"loki_enabled"`
	LokiURL       string            `mapstructure:"loki_url"`
	LokiLabels    map[string]string `mapstructure:"loki_labels"`
	LokiBatchSize int               `mapstructure:"loki_batch_size"`
}

// FileLogConfig holds rotating file output settings / Configuration du fichier de log tournant
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MockAPIConfig holds the development backend configuration / Configuration du backend de développement
type MockAPIConfig struct {
	Port         string            `mapstructure:"port"`
	ReadTimeout  time.Duration     `mapstructure:"read_timeout"`
	WriteTimeout time.Duration     `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration     `mapstructure:"idle_timeout"`
	Seed         bool              `mapstructure:"seed"` // Preload sample records / Précharge des données d'exemple
	RequireAuth  bool              `mapstructure:"require_auth"`
	JWTSecret    string            `mapstructure:"jwt_secret"`
	RateLimit    RateLimiterConfig `mapstructure:"rate_limit"`
	// Proxy headers are only trusted from these addresses / En-têtes proxy acceptés uniquement depuis ces adresses
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// IsProduction checks if environment is production / Vérifie si l'environnement est production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment checks if environment is development / Vérifie si l'environnement est development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SeparatorRune returns the CSV separator as a rune / Retourne le séparateur CSV
func (e ExportConfig) SeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(e.Separator)
	return r
}

// LoadConfig loads configuration from YAML and env vars; path overrides ./config.yaml.
// LoadConfig charge la config depuis YAML et variables d'env
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Default values
	v.SetDefault("environment", "development")
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.user_agent", "backoffice-client/1.0")

	// Client throttle - off by default, the backend has its own limits
	v.SetDefault("rate_limiter.rps", 10)
	v.SetDefault("rate_limiter.burst", 20)
	v.SetDefault("rate_limiter.enabled", false)

	v.SetDefault("auth.token", "")
	v.SetDefault("auth.token_file", "")
	v.SetDefault("auth.expiry_skew", "30s")

	v.SetDefault("bulk.concurrency", 1)
	v.SetDefault("bulk.journal_enabled", true)
	v.SetDefault("bulk.journal_path", "backoffice.db")

	v.SetDefault("validation.strict_subchecks", false)

	v.SetDefault("export.directory", "./exports")
	v.SetDefault("export.separator", ";")
	v.SetDefault("export.bom", true)
	v.SetDefault("export.page_size", 100)
	v.SetDefault("export.max_pages", 50)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile_path", "./metrics/backoffice.prom")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "./logs/backoffice.log")
	v.SetDefault("logging.file.max_size_mb", 10)
	v.SetDefault("logging.file.max_backups", 5)
	v.SetDefault("logging.file.max_age_days", 30)
	v.SetDefault("logging.file.compress", true)
	v.SetDefault("logging.loki_enabled", false)
	v.SetDefault("logging.loki_url", "http://localhost:3100")
	v.SetDefault("logging.loki_labels", map[string]string{
		"app":         "backoffice",
		"environment": "development",
	})
	v.SetDefault("logging.loki_batch_size", 10)

	// Mock API defaults
	v.SetDefault("mockapi.port", "8080")
	v.SetDefault("mockapi.read_timeout", "10s")
	v.SetDefault("mockapi.write_timeout", "10s")
	v.SetDefault("mockapi.idle_timeout", "120s")
	v.SetDefault("mockapi.seed", true)
	v.SetDefault("mockapi.require_auth", false)
	v.SetDefault("mockapi.jwt_secret", "")
	v.SetDefault("mockapi.rate_limit.rps", 50)
	v.SetDefault("mockapi.rate_limit.burst", 100)
	v.SetDefault("mockapi.rate_limit.enabled", true)
	v.SetDefault("mockapi.trusted_proxies", []string{})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	_ = v.BindEnv("auth.token", "BACKOFFICE_TOKEN")
	_ = v.BindEnv("api.base_url", "BACKOFFICE_API_URL")
	_ = v.BindEnv("mockapi.jwt_secret", "MOCKAPI_JWT_SECRET")

	var cfg Config
	err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, err
	}

	// Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates configuration / Valide la configuration
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateAPI,
		c.validateRateLimiter,
		c.validateBulk,
		c.validateExport,
		c.validateLogging,
		c.validateMockAPI,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateAPI validates backend connection settings
func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL)
	}

	// Production-specific transport validation
	if c.IsProduction() && u.Scheme != "https" {
		return errors.New("api.base_url must use https in production")
	}

	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	return nil
}

// validateRateLimiter validates rate limiter configuration
func (c *Config) validateRateLimiter() error {
	return validateLimiter("rate_limiter", c.RateLimiter)
}

func validateLimiter(section string, rl RateLimiterConfig) error {
	if !rl.Enabled {
		return nil
	}

	if rl.RPS <= 0 {
		return fmt.Errorf("%s.rps must be positive when enabled", section)
	}

	if rl.Burst <= 0 {
		return fmt.Errorf("%s.burst must be positive when enabled", section)
	}

	return nil
}

// validateBulk validates batch runner settings
func (c *Config) validateBulk() error {
	if c.Bulk.Concurrency < 1 || c.Bulk.Concurrency > 32 {
		return errors.New("bulk.concurrency must be between 1 and 32")
	}
	if c.Bulk.JournalEnabled && c.Bulk.JournalPath == "" {
		return errors.New("bulk.journal_path is required when the journal is enabled")
	}
	return nil
}

// validateExport validates export settings
func (c *Config) validateExport() error {
	if utf8.RuneCountInString(c.Export.Separator) != 1 {
		return errors.New("export.separator must be a single character")
	}
	if sep := c.Export.SeparatorRune(); sep == '"' || sep == '\r' || sep == '\n' {
		return errors.New("export.separator cannot be a quote or a line break")
	}
	if c.Export.PageSize <= 0 {
		return errors.New("export.page_size must be positive")
	}
	if c.Export.MaxPages <= 0 {
		return errors.New("export.max_pages must be positive")
	}
	return nil
}

// validateLogging validates logging settings
func (c *Config) validateLogging() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logging.Level)) {
		return errors.New("logging.level must be one of: debug, info, warn, error")
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.Logging.Format)) {
		return errors.New("logging.format must be one of: text, json")
	}
	if c.Logging.File.Enabled && c.Logging.File.Path == "" {
		return errors.New("logging.file.path is required when file output is enabled")
	}
	if c.Logging.LokiEnabled && c.Logging.LokiURL == "" {
		return errors.New("logging.loki_url is required when loki is enabled")
	}
	return nil
}

// validateMockAPI validates development backend settings
func (c *Config) validateMockAPI() error {
	if c.MockAPI.Port == "" {
		return errors.New("mockapi.port is required")
	}
	if c.MockAPI.RequireAuth && len(c.MockAPI.JWTSecret) < 32 {
		return errors.New("mockapi.jwt_secret must be ≥32 chars when require_auth is enabled")
	}
	return validateLimiter("mockapi.rate_limit", c.MockAPI.RateLimit)
}
