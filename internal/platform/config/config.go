// Package config loads process configuration from the environment and
// provides the fatal-exit helper the command entry points share.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates target from environment variables using its env tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf writes a formatted message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
