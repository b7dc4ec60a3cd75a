package config

import (
	"os"
	"path/filepath"
)

const (
	EnvConfigPath  = "ARANGO_CONFIG"
	ConfigFileName = "arango.yaml"
	ConfigDirName  = "arango"
)

// FindConfigPath returns the first existing config file, in order:
//  1. $ARANGO_CONFIG
//  2. ./arango.yaml
//  3. $XDG_CONFIG_HOME/arango/config.yaml
//  4. ~/.config/arango/config.yaml
//
// It returns "" when none exists.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		path := filepath.Join(xdg, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
