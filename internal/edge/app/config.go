package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SessionSecret string // Required in prod: HS256 key for session tokens
	CSRFSecret    string // Required in prod: HMAC key for CSRF tokens
	EmailSecret   string // Optional: salt for hashed email rate-limit keys (default: CSRFSecret)

	RedisAddr     string // Optional: redis address for the rate limit counter (empty = in-memory only)
	RedisPassword string // Optional
	DatabaseFile  string // Optional: path to SQLite database file (default: ./edge.db)

	ResendAPIKey string // Optional: Resend API key; empty falls back to the log mailer
	MailFrom     string // Optional: From address for outgoing mail
	ContactInbox string // Optional: destination for contact notifications
	BaseURL      string // Optional: public base URL used in emailed links (default: http://localhost:8080)

	SentryDSN string // Optional: error reporting

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	SweepInterval        time.Duration // Rate limit fallback sweep interval (default: 5m)
}

// LoadConfig reads the environment, with a best-effort .env load for
// local development first.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		SessionSecret: os.Getenv("EDGE_SESSION_SECRET"),
		CSRFSecret:    os.Getenv("EDGE_CSRF_SECRET"),
		EmailSecret:   os.Getenv("EDGE_EMAIL_SECRET"),

		RedisAddr:     os.Getenv("EDGE_REDIS_ADDR"),
		RedisPassword: os.Getenv("EDGE_REDIS_PASSWORD"),
		DatabaseFile:  getEnvOrDefault("EDGE_DATABASE_FILE", "edge.db"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     getEnvOrDefault("EDGE_MAIL_FROM", "DiscoverUz <noreply@discoveruz.example>"),
		ContactInbox: getEnvOrDefault("EDGE_CONTACT_INBOX", "hello@discoveruz.example"),
		BaseURL:      getEnvOrDefault("EDGE_BASE_URL", "http://localhost:8080"),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		SweepInterval:        getEnvDurationOrDefault("EDGE_SWEEP_INTERVAL", 5*time.Minute),
	}
}

// Validate enforces the fail-secure startup contract: in prod, missing
// secrets abort the process instead of degrading to unsigned tokens. In
// dev they fall back to fixed values so the stack runs out of the box.
func (cfg *Config) Validate() error {
	if cfg.IsProd() {
		var missing []string
		if cfg.SessionSecret == "" {
			missing = append(missing, "EDGE_SESSION_SECRET")
		}
		if cfg.CSRFSecret == "" {
			missing = append(missing, "EDGE_CSRF_SECRET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required secrets in prod: %v", missing)
		}
		if cfg.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required in prod")
		}
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-session-secret-do-not-use-in-prod"
	}
	if cfg.CSRFSecret == "" {
		cfg.CSRFSecret = "dev-csrf-secret-do-not-use-in-prod"
	}
	if cfg.EmailSecret == "" {
		cfg.EmailSecret = cfg.CSRFSecret
	}
	return nil
}

func (cfg *Config) IsProd() bool { return cfg.Env == "prod" }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer minutes accepted for backwards compatibility.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
