package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Values come from an optional YAML file
// with environment variable overrides; the Gemini API key itself is read
// from the environment by the generator.
type Config struct {
	Port        string `yaml:"port"`
	DataPath    string `yaml:"data_path"`
	GeminiModel string `yaml:"gemini_model"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:     "8888",
		DataPath: "fitroom.db",
	}
}

// Load reads the YAML config at path (skipped when empty) and applies
// FITROOM_* environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("FITROOM_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("FITROOM_DATA_PATH"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("FITROOM_GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}

	return cfg, nil
}
