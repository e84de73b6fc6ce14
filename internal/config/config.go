// Package config loads service configuration from ROADWARD_* environment
// variables.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process-wide configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `default:":8080"`
	// Environment selects error verbosity; "development" exposes internal
	// error details in responses.
	Environment string `default:"production"`
	// PGDSN enables the postgres stores; empty falls back to in-memory.
	PGDSN string `envconfig:"PG_DSN"`
	// TokenSecret signs bearer tokens. Required.
	TokenSecret string `envconfig:"TOKEN_SECRET"`
	// TokenTTL is the bearer token lifetime.
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	// UploadDir enables disk-backed uploads; empty disables the upload
	// endpoints without affecting anything else.
	UploadDir string `envconfig:"UPLOAD_DIR"`

	RateBurst    int   `envconfig:"RATE_BURST" default:"20"`
	RatePerSec   int   `envconfig:"RATE_PER_SEC" default:"10"`
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// Load reads and validates configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("roadward", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("ROADWARD_TOKEN_SECRET is required")
	}
	return cfg, nil
}

// Development reports whether the process runs with development error output.
func (c Config) Development() bool {
	return c.Environment == "development"
}
