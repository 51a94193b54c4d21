// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/hireloop/hireloop/internal/identity"
)

// Config holds the full service configuration. Keys are flat and use
// dashes so the YAML file and the command-line flags share names.
type Config struct {
	HTTPAddr    string `koanf:"http-addr"`
	MetricsAddr string `koanf:"metrics-addr"`
	DatabaseURL string `koanf:"database-url"`

	TokenSecret string        `koanf:"token-secret"`
	TokenTTL    time.Duration `koanf:"token-ttl"`

	OTPTTL        time.Duration `koanf:"otp-ttl"`
	SweepInterval time.Duration `koanf:"sweep-interval"`

	SequenceBase int64 `koanf:"sequence-base"`

	SMTPAddr string `koanf:"smtp-addr"`
	SMTPFrom string `koanf:"smtp-from"`

	LogFormat string `koanf:"log-format"`
}

// Default values for serve command flags.
const (
	DefaultHTTPAddr    = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
)

// DefaultConfig returns the configuration with all defaults applied.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      DefaultHTTPAddr,
		MetricsAddr:   DefaultMetricsAddr,
		TokenTTL:      identity.DefaultTokenTTL,
		OTPTTL:        identity.DefaultChallengeTTL,
		SweepInterval: identity.DefaultSweepInterval,
		LogFormat:     DefaultLogFormat,
	}
}

// Load builds the configuration from defaults, then the YAML file at
// path (skipped when path is empty), then any changed flags in flags
// (skipped when nil).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Unchanged flags whose keys already came from the file are
		// skipped, so the file wins over flag defaults.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	return cfg, nil
}

// Validate checks that the configuration can run the serve command.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Errorf("http-addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Errorf("database-url is required")
	}
	if c.TokenSecret == "" {
		return oops.Errorf("token-secret is required")
	}
	if c.TokenTTL <= 0 {
		return oops.Errorf("token-ttl must be positive, got %s", c.TokenTTL)
	}
	if c.OTPTTL <= 0 {
		return oops.Errorf("otp-ttl must be positive, got %s", c.OTPTTL)
	}
	if c.SweepInterval <= 0 {
		return oops.Errorf("sweep-interval must be positive, got %s", c.SweepInterval)
	}
	if c.SequenceBase < 0 {
		return oops.Errorf("sequence-base must not be negative, got %d", c.SequenceBase)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}
