// ABOUTME: Application config loading from config.toml and environment
// ABOUTME: Fills defaults under the XDG data directory and writes starter files
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
)

// Environment overrides, mostly for tests and tooling.
const (
	EnvDBPath = "ZENOTER_DB_PATH"
	EnvSocket = "ZENOTER_SOCKET"
)

type Config struct {
	DBPath     string `toml:"db_path"`
	SocketPath string `toml:"socket_path"`
	LogFile    string `toml:"log_file"`
	LogLevel   string `toml:"log_level"`
	// QuitWhenIdle stops the host once the last client disconnects.
	QuitWhenIdle bool `toml:"quit_when_idle"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := AppDataDir()
	return &Config{
		DBPath:       filepath.Join(dataDir, "data", "zenoter.db"),
		SocketPath:   filepath.Join(dataDir, "zenoter.sock"),
		LogFile:      filepath.Join(dataDir, "logs", "zenoter.log"),
		LogLevel:     "info",
		QuitWhenIdle: runtime.GOOS != "darwin",
	}
}

// Load reads the config file at path over the defaults. A missing file is not
// an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvSocket); v != "" {
		cfg.SocketPath = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configs that cannot start a host.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path cannot be empty")
	}
	if c.SocketPath == "" {
		return errors.New("config: socket_path cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Write stores cfg at path atomically, creating the parent directory.
func Write(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
