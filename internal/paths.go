package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StatePaths holds the locations of the client's local state
type StatePaths struct {
	BaseDir string // root of local state (~/.jtrac by default)
}

// DetectStatePaths resolves the state directory. A custom path wins; otherwise
// $XDG_STATE_HOME/jtrac on Linux when set, else ~/.jtrac.
func DetectStatePaths(customPath string) (StatePaths, error) {
	if customPath != "" {
		abs, err := filepath.Abs(customPath)
		if err != nil {
			return StatePaths{}, fmt.Errorf("invalid state path %q: %w", customPath, err)
		}
		return StatePaths{BaseDir: abs}, nil
	}

	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return StatePaths{BaseDir: filepath.Join(xdg, "jtrac")}, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return StatePaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}
	return StatePaths{BaseDir: filepath.Join(home, ".jtrac")}, nil
}

// Ensure creates the state directory with user-only permissions
func (sp StatePaths) Ensure() error {
	if err := os.MkdirAll(sp.BaseDir, 0o700); err != nil {
		return &StorageError{Path: sp.BaseDir, Op: "mkdir", Err: err}
	}
	return nil
}

// DatabasePath is the SQLite file backing local storage
func (sp StatePaths) DatabasePath() string {
	return filepath.Join(sp.BaseDir, "local-storage.db")
}

// ConfigPath is the optional YAML config file
func (sp StatePaths) ConfigPath() string {
	return filepath.Join(sp.BaseDir, "config.yaml")
}

// DatabaseExists checks if the state database has been created yet
func (sp StatePaths) DatabaseExists() bool {
	_, err := os.Stat(sp.DatabasePath())
	return err == nil
}
