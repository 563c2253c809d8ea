package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDir          = ".tasknest"
	DefaultDatabaseFile = "tasknest.db"
	DefaultExportFile   = "export.json"
)

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Export   ExportConfig   `yaml:"export"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: filepath.Join(DefaultDir, DefaultDatabaseFile)},
		Export:   ExportConfig{Path: filepath.Join(DefaultDir, DefaultExportFile)},
	}
}

// Load reads a YAML config from path. A missing file is not an error;
// defaults apply, and any field the file leaves empty keeps its default.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(DefaultDir, DefaultDatabaseFile)
	}
	if cfg.Export.Path == "" {
		cfg.Export.Path = filepath.Join(DefaultDir, DefaultExportFile)
	}
	return cfg, nil
}
