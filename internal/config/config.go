package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DISCORDBOT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: DISCORDBOT_PORT -> port, etc.
	if err := k.Load(env.Provider("DISCORDBOT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DISCORDBOT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// validBackends is the set of recognized secrets backend values.
var validBackends = map[SecretsBackend]bool{
	SecretsEnv: true,
	SecretsAWS: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if !validBackends[c.SecretsBackend] {
		return fmt.Errorf("invalid secrets_backend %q: must be one of env, aws", c.SecretsBackend)
	}

	if c.SecretsBackend == SecretsAWS {
		if c.AWSRegion == "" {
			return fmt.Errorf("aws_region is required with the aws secrets backend")
		}
		if c.AWSSecretID == "" {
			return fmt.Errorf("aws_secret_id is required with the aws secrets backend")
		}
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.DispatchWorkers <= 0 {
		return fmt.Errorf("dispatch_workers must be positive")
	}
	if c.DispatchQueue <= 0 {
		return fmt.Errorf("dispatch_queue must be positive")
	}

	return nil
}
