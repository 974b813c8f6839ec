package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Flags     FlagsConfig
	SMTP      SMTPConfig
	BankLink  BankLinkConfig
	Webhook   WebhookConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr leaves the
// rate limiter unconfigured, which makes it fail open.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. MagicLinkSecret and
// UnsubscribeSecret being empty are legal states; the components that
// depend on them fail closed.
type AuthConfig struct {
	MagicLinkSecret       string
	MagicLinkTTLMinutes   int
	UnsubscribeSecret     string
	UnsubscribeTTLDays    int
	APITokenPrefix        string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// RateLimitConfig sets per-purpose sliding-window sizes.
type RateLimitConfig struct {
	AuthLimit         int
	AuthWindowSec     int
	BillingLimit      int
	BillingWindowSec  int
	ViewLimit         int
	ViewWindowSeconds int
}

// FlagsConfig points the feature-flag resolver at its allow-list source.
type FlagsConfig struct {
	SourceURL       string
	SourceKey       string
	CacheTTLSeconds int
}

// SMTPConfig holds mailer settings. An empty Host disables outbound email.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// BankLinkConfig holds bank-account provider credentials. When unset,
// linking reports a not-configured status instead of failing requests.
type BankLinkConfig struct {
	ProviderURL string
	ClientID    string
	Secret      string
}

// WebhookConfig holds the optional notification webhook endpoint.
type WebhookConfig struct {
	URL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "dataroom-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               getEnv("APP_BASE_URL", "http://localhost:8080"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			MagicLinkSecret:       os.Getenv("AUTH_MAGIC_LINK_SECRET"),
			MagicLinkTTLMinutes:   getEnvAsInt("AUTH_MAGIC_LINK_TTL_MINUTES", 20),
			UnsubscribeSecret:     os.Getenv("AUTH_UNSUBSCRIBE_SECRET"),
			UnsubscribeTTLDays:    getEnvAsInt("AUTH_UNSUBSCRIBE_TTL_DAYS", 90),
			APITokenPrefix:        getEnv("AUTH_API_TOKEN_PREFIX", "dr_"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 43200),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		RateLimit: RateLimitConfig{
			AuthLimit:         getEnvAsInt("RATE_LIMIT_AUTH_MAX", 10),
			AuthWindowSec:     getEnvAsInt("RATE_LIMIT_AUTH_WINDOW_SECONDS", 60),
			BillingLimit:      getEnvAsInt("RATE_LIMIT_BILLING_MAX", 5),
			BillingWindowSec:  getEnvAsInt("RATE_LIMIT_BILLING_WINDOW_SECONDS", 60),
			ViewLimit:         getEnvAsInt("RATE_LIMIT_VIEW_MAX", 60),
			ViewWindowSeconds: getEnvAsInt("RATE_LIMIT_VIEW_WINDOW_SECONDS", 60),
		},
		Flags: FlagsConfig{
			SourceURL:       os.Getenv("FLAGS_SOURCE_URL"),
			SourceKey:       os.Getenv("FLAGS_SOURCE_KEY"),
			CacheTTLSeconds: getEnvAsInt("FLAGS_CACHE_TTL_SECONDS", 60),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@example.com"),
		},
		BankLink: BankLinkConfig{
			ProviderURL: os.Getenv("BANK_LINK_PROVIDER_URL"),
			ClientID:    os.Getenv("BANK_LINK_CLIENT_ID"),
			Secret:      os.Getenv("BANK_LINK_SECRET"),
		},
		Webhook: WebhookConfig{
			URL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Configured reports whether a mailer can be built from this config.
func (s SMTPConfig) Configured() bool {
	return s.Host != ""
}

// Configured reports whether bank linking credentials are present.
func (b BankLinkConfig) Configured() bool {
	return b.ProviderURL != "" && b.ClientID != "" && b.Secret != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
