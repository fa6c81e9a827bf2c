// Package config resolves reposystem's data directory and optional config
// file, per spec section 6.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	dataDirEnv   = "REPOSYSTEM_DATA_DIR"
	configEnv    = "REPOSYSTEM_CONFIG"
	operatorEnv  = "USER"
	fallbackUser = "unknown"
	orgName      = "hyperpolymath"
	appName      = "reposystem"
)

// File holds optional config-file defaults (YAML, loaded from
// REPOSYSTEM_CONFIG when set).
type File struct {
	DefaultOperator string `yaml:"default_operator,omitempty"`
	DefaultExport   string `yaml:"default_export,omitempty"`
}

// DataDir resolves the data directory: REPOSYSTEM_DATA_DIR wins if set;
// otherwise the platform user-data directory for org hyperpolymath / app
// reposystem; otherwise .reposystem in the current working directory.
func DataDir() (string, error) {
	if dir := os.Getenv(dataDirEnv); dir != "" {
		return dir, nil
	}

	if base, err := userDataDir(); err == nil && base != "" {
		return filepath.Join(base, orgName, appName), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, ".reposystem"), nil
}

// userDataDir returns the OS-appropriate per-user application data root.
func userDataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return os.UserConfigDir()
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// Load reads REPOSYSTEM_CONFIG if set, returning a zero File if unset.
func Load() (File, error) {
	path := os.Getenv(configEnv)
	if path == "" {
		return File{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Operator returns the applier identity recorded on audit entries: the USER
// environment variable, defaulting to "unknown".
func Operator() string {
	if u := os.Getenv(operatorEnv); u != "" {
		return u
	}
	return fallbackUser
}
