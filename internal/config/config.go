// Package config loads and validates service configuration from the
// environment. Handlers and services never read environment variables
// directly; everything flows through the struct built here.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// StateBinding selects how login state is bound between Start and Finalize
type StateBinding string

const (
	// StateBindingStored keeps a server-side record per login attempt
	StateBindingStored StateBinding = "stored"
	// StateBindingSelf encodes the attempt into the state value itself
	StateBindingSelf StateBinding = "self"
)

// Config holds all service configuration
type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	// Upstream OIDC provider
	OIDCIssuerURL    string   `env:"OIDC_ISSUER_URL"`
	OIDCClientID     string   `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string   `env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string   `env:"OIDC_REDIRECT_URL"`
	OIDCExtraScopes  []string `env:"OIDC_EXTRA_SCOPES" envSeparator:" "`

	// Application surface
	AppDomain        string `env:"APP_DOMAIN"`
	DefaultReturnURL string `env:"DEFAULT_RETURN_URL"`
	CookieDomain     string `env:"COOKIE_DOMAIN"`

	// Sessions and state
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	StateBinding  StateBinding  `env:"STATE_BINDING" envDefault:"stored"`
	StateTTL      time.Duration `env:"STATE_TTL" envDefault:"5m"`

	// Storage
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	// Timeouts and maintenance
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// Load reads configuration from the environment and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Validate checks that required settings are present. Error messages name
// the variable, never its value.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"OIDC_ISSUER_URL", c.OIDCIssuerURL},
		{"OIDC_CLIENT_ID", c.OIDCClientID},
		{"OIDC_CLIENT_SECRET", c.OIDCClientSecret},
		{"OIDC_REDIRECT_URL", c.OIDCRedirectURL},
		{"APP_DOMAIN", c.AppDomain},
		{"SESSION_SECRET", c.SessionSecret},
		{"DATABASE_URL", c.DatabaseURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required environment variable %s", r.name)
		}
	}

	switch c.StateBinding {
	case StateBindingStored, StateBindingSelf:
	default:
		return fmt.Errorf("invalid STATE_BINDING %q (want %q or %q)",
			c.StateBinding, StateBindingStored, StateBindingSelf)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.DefaultReturnURL == "" {
		c.DefaultReturnURL = "https://" + c.AppDomain + "/post-login"
	}
	if c.CookieDomain == "" {
		c.CookieDomain = c.AppDomain
	}
}
