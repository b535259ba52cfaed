// Package config reads run settings from the process environment. Every
// variable is namespaced under Prefix, so struct tags name only the suffix.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Prefix namespaces every variable read by ParseEnv.
const Prefix = "EALIFE_"

// ParseEnv fills target from the EALIFE_* variables, applying envDefault
// tags for unset ones.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: Prefix}); err != nil {
		return fmt.Errorf("parse %s* env: %w", Prefix, err)
	}
	return nil
}
