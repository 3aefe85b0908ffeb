// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aaronzipp/wolfden/internal/game"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Activity backends
const (
	ActivityMemory = "memory"
	ActivityRedis  = "redis"
)

// Config holds every tunable of the server.
type Config struct {
	Addr      string `env:"WOLFDEN_ADDR" envDefault:":8080"`
	PublicURL string `env:"WOLFDEN_PUBLIC_URL" envDefault:"http://localhost:8080"`
	Debug     bool   `env:"WOLFDEN_DEBUG"`

	Prefix         string        `env:"WOLFDEN_PREFIX" envDefault:"!"`
	DefaultVariant string        `env:"WOLFDEN_VARIANT" envDefault:"classic"`
	Moderators     []string      `env:"WOLFDEN_MODERATORS" envSeparator:","`
	SignupWindow   time.Duration `env:"WOLFDEN_SIGNUP_WINDOW" envDefault:"1h"`
	Discussion     time.Duration `env:"WOLFDEN_DISCUSSION" envDefault:"3m"`
	Vote           time.Duration `env:"WOLFDEN_VOTE" envDefault:"2m"`
	Night          time.Duration `env:"WOLFDEN_NIGHT" envDefault:"1m"`
	TickInterval   time.Duration `env:"WOLFDEN_TICK" envDefault:"1s"`

	InactivityTimeout time.Duration `env:"WOLFDEN_INACTIVITY_TIMEOUT" envDefault:"20m"`
	ActivityBackend   string        `env:"WOLFDEN_ACTIVITY" envDefault:"memory"`
	RedisAddr         string        `env:"WOLFDEN_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword     string        `env:"WOLFDEN_REDIS_PASSWORD"`
	RedisDB           int           `env:"WOLFDEN_REDIS_DB" envDefault:"0"`

	StoreDriver string `env:"WOLFDEN_STORE" envDefault:"sqlite"`
	StoreDSN    string `env:"WOLFDEN_STORE_DSN" envDefault:"wolfden.db"`

	OutboxWorkers  int           `env:"WOLFDEN_OUTBOX_WORKERS" envDefault:"4"`
	OutboxTries    uint          `env:"WOLFDEN_OUTBOX_TRIES" envDefault:"5"`
	OutboxMaxWait  time.Duration `env:"WOLFDEN_OUTBOX_MAX_WAIT" envDefault:"30s"`
	SSESendTimeout time.Duration `env:"WOLFDEN_SSE_SEND_TIMEOUT" envDefault:"2s"`
}

// Load reads an optional .env file, then the environment. Variables that
// are already set win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Moderators = trimAll(cfg.Moderators)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	for name, d := range map[string]time.Duration{
		"WOLFDEN_SIGNUP_WINDOW":      c.SignupWindow,
		"WOLFDEN_DISCUSSION":         c.Discussion,
		"WOLFDEN_VOTE":               c.Vote,
		"WOLFDEN_NIGHT":              c.Night,
		"WOLFDEN_TICK":               c.TickInterval,
		"WOLFDEN_INACTIVITY_TIMEOUT": c.InactivityTimeout,
		"WOLFDEN_OUTBOX_MAX_WAIT":    c.OutboxMaxWait,
		"WOLFDEN_SSE_SEND_TIMEOUT":   c.SSESendTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverBolt:
	default:
		errs = append(errs, fmt.Errorf("unknown WOLFDEN_STORE %q", c.StoreDriver))
	}
	if c.StoreDriver != DriverMemory && strings.TrimSpace(c.StoreDSN) == "" {
		errs = append(errs, fmt.Errorf("WOLFDEN_STORE_DSN is required for %s", c.StoreDriver))
	}
	switch c.ActivityBackend {
	case ActivityMemory, ActivityRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown WOLFDEN_ACTIVITY %q", c.ActivityBackend))
	}
	if _, ok := game.LookupVariant(c.DefaultVariant); !ok {
		errs = append(errs, fmt.Errorf("unknown WOLFDEN_VARIANT %q", c.DefaultVariant))
	}
	if strings.TrimSpace(c.Prefix) == "" || strings.ContainsAny(c.Prefix, " \t") {
		errs = append(errs, fmt.Errorf("WOLFDEN_PREFIX must be a non-empty token"))
	}
	if c.OutboxWorkers < 1 {
		errs = append(errs, fmt.Errorf("WOLFDEN_OUTBOX_WORKERS must be at least 1"))
	}
	return errors.Join(errs...)
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
