package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvDB overrides the database path when set.
const EnvDB = "TASKMGR_DB"

// Config holds all taskmgr configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Display  DisplayConfig  `yaml:"display"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // empty: store.DefaultDBPath()
}

type DisplayConfig struct {
	TitleWidth int `yaml:"title_width"` // column width of titles in `list`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Display: DisplayConfig{
			TitleWidth: 60,
		},
	}
}

// DefaultPath returns ~/.taskmgr/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".taskmgr", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error. TASKMGR_DB, when set, wins over database.path.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env := os.Getenv(EnvDB); env != "" {
		cfg.Database.Path = env
	}
	if cfg.Display.TitleWidth <= 0 {
		cfg.Display.TitleWidth = Default().Display.TitleWidth
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the parent directory.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
