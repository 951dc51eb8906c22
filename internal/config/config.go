// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
)

// Config captures everything the process reads from its environment.
// DatabaseURL and RedisURL may be empty outside production, which selects
// the in-memory backends.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"kittie"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	LedgerURL        string        `env:"LEDGER_URL" envDefault:"http://localhost:3068"`
	LedgerName       string        `env:"LEDGER_NAME" envDefault:"kittie"`
	LedgerTimeout    time.Duration `env:"LEDGER_TIMEOUT" envDefault:"10s"`
	LedgerScriptsDir string        `env:"LEDGER_SCRIPTS_DIR"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	OTPMaxPerMin   int           `env:"OTP_MAX_PER_MIN" envDefault:"5"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
			return Config{}, fmt.Errorf("Stripe credentials must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}
	return cfg, nil
}

// IsDev reports whether the process runs in a development-like environment,
// where in-memory stand-ins for postgres, redis and the payment provider are
// acceptable.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
