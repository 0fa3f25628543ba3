// ABOUTME: XDG Base Directory specification helpers
// ABOUTME: Resolves zenoter's private data and config directories with fallbacks
package config

import (
	"os"
	"path/filepath"
)

// AppName names the per-application directories under the XDG roots.
const AppName = "zenoter"

// GetDataHome returns XDG_DATA_HOME or fallback to ~/.local/share
func GetDataHome() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".local", "share")
}

// GetConfigHome returns XDG_CONFIG_HOME or fallback to ~/.config
func GetConfigHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".config")
}

// AppDataDir returns the application's private data directory.
func AppDataDir() string {
	return filepath.Join(GetDataHome(), AppName)
}

// DefaultPath returns the location of config.toml.
func DefaultPath() string {
	return filepath.Join(GetConfigHome(), AppName, "config.toml")
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}
