package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const cvarsFileName = "cvars.yaml"

// Load layers a cvars YAML file over the balance profile defaults.
// Search order: customPath -> ~/.recwars/cvars.yaml -> ./configs/cvars.yaml -> embedded default.
// Keys missing from the file keep the profile value.
func Load(customPath string, b Balance) (Cvars, error) {
	cfg := NewCvars(b)

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read cvars %s: %w", customPath, err)
		}
		if err := decodeOver(&cfg, data); err != nil {
			return cfg, fmt.Errorf("failed to parse cvars %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(cvarsFileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := decodeOver(&cfg, data); err == nil {
				return cfg, nil
			}
			cfg = NewCvars(b)
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", cvarsFileName)); err == nil {
		if err := decodeOver(&cfg, data); err == nil {
			return cfg, nil
		}
		cfg = NewCvars(b)
	}

	// Use embedded default YAML
	if err := decodeOver(&cfg, defaultCvarsYAML); err != nil {
		return NewCvars(b), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// decodeOver unmarshals data into a copy of cfg and only commits it when the
// result is valid, so a bad file never leaves cfg half-applied.
func decodeOver(cfg *Cvars, data []byte) error {
	next := *cfg
	if err := yaml.Unmarshal(data, &next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

// Marshal renders cvars as YAML using the cvar names as keys.
func Marshal(c Cvars) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal cvars: %w", err)
	}
	return data, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".recwars", filename)
}
