// Package config provides configuration management for mtcli.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name used for directories.
	AppName = "mtcli"
	// ConfigDirEnv overrides the configuration directory.
	ConfigDirEnv = "MTCLI_CONFIG_DIR"
)

// Paths holds all the application paths.
type Paths struct {
	// ConfigDir holds one YAML file per profile and the .CURRENT pointer.
	ConfigDir string
}

// GetPaths returns the application paths. Profiles live in ~/.mtcli unless
// MTCLI_CONFIG_DIR points elsewhere.
func GetPaths() Paths {
	return Paths{
		ConfigDir: getConfigDir(),
	}
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	// Check for explicit override
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}

	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, "."+AppName)
	}

	if runtime.GOOS == "windows" {
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, "."+AppName)
		}
	}

	// Last resort fallback
	return filepath.Join(".", "."+AppName)
}

// EnsureDirs creates all necessary directories if they don't exist.
func (p Paths) EnsureDirs() error {
	return os.MkdirAll(p.ConfigDir, 0700)
}
