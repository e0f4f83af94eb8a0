// Package config builds the runtime configuration from environment
// variables with documented defaults, optionally overridden by a YAML
// file. The resulting Config is passed explicitly to whatever needs it;
// nothing in this package holds global state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverLibsql   = "libsql"
)

type Database struct {
	Driver string `yaml:"driver"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	Name   string `yaml:"name"`
	Host   string `yaml:"host"`
	Port   string `yaml:"port"`
	// URL is the full DSN used by the libsql driver.
	URL string `yaml:"url"`
}

type Config struct {
	Address   string   `yaml:"address"`
	UploadDir string   `yaml:"upload_dir"`
	Database  Database `yaml:"database"`
}

// Load reads the environment (falling back to defaults) and, when path
// is non-empty, applies the YAML file on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Address:   envOr("ADDRESS", ":8080"),
		UploadDir: envOr("UPLOAD_DIR", "./uploads"),
		Database: Database{
			Driver: envOr("DB_DRIVER", DriverPostgres),
			User:   envOr("DB_USER", "taskboard"),
			Pass:   envOr("DB_PASS", "taskboard"),
			Name:   envOr("DB_NAME", "taskboard"),
			Host:   envOr("DB_HOST", "localhost"),
			Port:   envOr("DB_PORT", "5432"),
			URL:    os.Getenv("DB_URL"),
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if cfg.Database.Driver != DriverPostgres && cfg.Database.Driver != DriverLibsql {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == DriverLibsql && cfg.Database.URL == "" {
		return nil, fmt.Errorf("libsql driver requires DB_URL")
	}

	return cfg, nil
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == DriverLibsql {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Database.Host, c.Database.User, c.Database.Pass, c.Database.Name, c.Database.Port)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
