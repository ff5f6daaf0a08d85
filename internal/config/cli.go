package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/rezkam/todo/internal/env"
)

// CLIConfig holds configuration for the todoctl binary.
type CLIConfig struct {
	Store StoreConfig `toml:"store"`
	Todo  TodoConfig  `toml:"todo"`
}

// LoadCLIConfig loads .env and the environment, then overlays the TOML
// profile at profilePath when one is given. Keys present in the profile
// override the environment.
func LoadCLIConfig(profilePath string) (*CLIConfig, error) {
	if err := env.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &CLIConfig{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load cli config: %w", err)
	}

	if profilePath != "" {
		md, err := toml.DecodeFile(profilePath, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", profilePath, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys in profile %s: %v", profilePath, undecoded)
		}
		if err := cfg.Store.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
