package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the auth module.
type Config struct {
	// Session tokens
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionIssuer string        `env:"SESSION_ISSUER" envDefault:"coach-portal"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// PolicyEnabled puts Protect and the CEL access gate in front of /data.
	PolicyEnabled bool `env:"ACCESS_POLICY_ENABLED" envDefault:"false"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// LoadConfig loads configuration from environment variables and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load auth configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Enabled reports whether sessions can be issued at all.
func (c *Config) Enabled() bool {
	return c.SessionSecret != ""
}

func (c *Config) Validate() error {
	if c.PolicyEnabled && c.SessionSecret == "" {
		return errors.New("ACCESS_POLICY_ENABLED requires SESSION_SECRET")
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.SessionIssuer == "" {
		c.SessionIssuer = "coach-portal"
	}
	return nil
}
