// Package config loads command configuration from the process environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix is shared by every environment variable the tabletop binaries read.
const Prefix = "TABLETOP_"

// Option adjusts how ParseEnv reads variables.
type Option func(*env.Options)

// WithEnvironment reads from the given map instead of the process environment.
func WithEnvironment(values map[string]string) Option {
	return func(opts *env.Options) {
		opts.Environment = values
	}
}

// WithRequiredDefaults fails parsing when a field has neither a value nor a default.
func WithRequiredDefaults() Option {
	return func(opts *env.Options) {
		opts.RequiredIfNoDef = true
	}
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any, options ...Option) error {
	opts := env.Options{}
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
