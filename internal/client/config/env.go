package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "VIMESTA"

// LoadEnv overlays cfg with VIMESTA_* variables. Unset variables leave the
// current value alone. Lists are comma separated.
func LoadEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
