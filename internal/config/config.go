// Package config is for app wide settings that are unmarshalled
// from Viper (see: /internal/cli)
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/virusdecode/virusdecode/internal/journal"
)

// Defaults for a local backend.
const (
	DefaultAPI     = "http://localhost:8080"
	DefaultTimeout = 60 * time.Second
)

// Config is the root-level settings struct, a mix of defaults,
// environment overrides, and command line flags.
type Config struct {
	// base URL of the alignment service
	API string `mapstructure:"api"`

	// overall per-request timeout
	Timeout time.Duration `mapstructure:"timeout"`

	// session journal DSN; ":memory:" keeps it session-scoped
	Journal string `mapstructure:"journal"`

	// verbose logging
	Verbose bool `mapstructure:"verbose"`
}

// SetDefaults registers defaults and the environment prefix on a
// viper instance. Flags bound later take precedence.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api", DefaultAPI)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("journal", journal.MemoryDSN)
	v.SetDefault("verbose", false)
	v.SetEnvPrefix("VIRUSDECODE")
	v.AutomaticEnv()
}

// New returns a Config populated from the viper instance.
func New(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode settings: %w", err)
	}
	return c, nil
}
