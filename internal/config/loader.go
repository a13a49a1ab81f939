package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wago/wdx-core/pkg/logging"
)

const configFileName = "config.yaml"

// Load reads config.yaml from configDir, falling back to DefaultConfig
// when it does not exist (mirroring the teacher's "no config.yaml found,
// using defaults" loader behavior).
func Load(configDir string) (ServiceConfig, error) {
	cfg := DefaultConfig()

	path := filepath.Join(configDir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("config", "no config.yaml found at %s, using defaults", path)
			return cfg, nil
		}
		return ServiceConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServiceConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	logging.Info("config", "loaded configuration from %s", path)
	return cfg, nil
}
