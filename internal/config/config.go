// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/logging"
	"github.com/joho/godotenv"
)

// Config holds the settings of the server and the worker. Empty URLs disable
// the matching integration.
type Config struct {
	APIPort         string
	TemporalHost    string
	TemporalEnabled bool
	TaskQueue       string

	DatabaseURL      string
	RedisURL         string
	RabbitMQURL      string
	RabbitMQExchange string

	StripeSecretKey    string
	StripeCurrency     string
	PaymentDeclineRate float64
	PaymentTimeout     time.Duration

	SessionBudget       time.Duration
	SessionReapInterval time.Duration
	SessionReapGrace    time.Duration
	OutcomeTTL          time.Duration

	Log logging.Options
}

// Load reads the environment after loading the given .env files (".env"
// when none are named). Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	l := &loader{}
	cfg := &Config{
		APIPort:         l.str("API_PORT", "8080"),
		TemporalHost:    l.str("TEMPORAL_HOST", "localhost:7233"),
		TemporalEnabled: l.bool("TEMPORAL_ENABLED", false),
		TaskQueue:       l.str("TASK_QUEUE", "ticket-checkout-queue"),

		DatabaseURL:      l.str("DATABASE_URL", ""),
		RedisURL:         l.str("REDIS_URL", ""),
		RabbitMQURL:      l.str("RABBITMQ_URL", ""),
		RabbitMQExchange: l.str("RABBITMQ_EXCHANGE", "checkout.activity"),

		StripeSecretKey:    l.str("STRIPE_SECRET_KEY", ""),
		StripeCurrency:     l.str("STRIPE_CURRENCY", "inr"),
		PaymentDeclineRate: l.float("PAYMENT_DECLINE_RATE", 0.15),
		PaymentTimeout:     l.duration("PAYMENT_TIMEOUT", 2*time.Minute),

		SessionBudget:       l.duration("SESSION_BUDGET", 15*time.Minute),
		SessionReapInterval: l.duration("SESSION_REAP_INTERVAL", time.Minute),
		SessionReapGrace:    l.duration("SESSION_REAP_GRACE", 10*time.Minute),
		OutcomeTTL:          l.duration("OUTCOME_TTL", 24*time.Hour),

		Log: logging.Options{
			Level:  l.str("LOG_LEVEL", "info"),
			Format: l.str("LOG_FORMAT", "json"),
			File:   l.str("LOG_FILE", ""),
		},
	}
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.PaymentDeclineRate < 0 || c.PaymentDeclineRate > 1 {
		errs = append(errs, fmt.Errorf("PAYMENT_DECLINE_RATE must be between 0 and 1, got %v", c.PaymentDeclineRate))
	}
	for key, d := range map[string]time.Duration{
		"PAYMENT_TIMEOUT":       c.PaymentTimeout,
		"SESSION_BUDGET":        c.SessionBudget,
		"SESSION_REAP_INTERVAL": c.SessionReapInterval,
		"SESSION_REAP_GRACE":    c.SessionReapGrace,
		"OUTCOME_TTL":           c.OutcomeTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", key, d))
		}
	}
	return errors.Join(errs...)
}

// loader collects parse errors so all bad variables are reported at once
type loader struct {
	errs []error
}

func (l *loader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (l *loader) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return b
}

func (l *loader) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return f
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}
