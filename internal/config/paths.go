// Package config provides configuration loading and path management.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the XDG subdirectories.
const AppName = "ltx-actions"

// Paths contains the standard paths for ltx-actions data.
type Paths struct {
	Data   string // ~/.local/share/ltx-actions
	Config string // ~/.config/ltx-actions
	State  string // ~/.local/state/ltx-actions
}

// GetPaths returns the standard paths for ltx-actions data.
func GetPaths() *Paths {
	return &Paths{
		Data:   filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), AppName),
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), AppName),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), AppName),
	}
}

// EnsurePaths creates all required directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Data, p.Config, p.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func defaultStateHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(GetPaths().Config, "actions.json")
}

// ProjectConfigPath returns the path to the project config file.
func ProjectConfigPath(directory string) string {
	return filepath.Join(directory, ProjectDirName, "actions.json")
}
