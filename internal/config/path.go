// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDataDir returns the portal's data directory, where the review store
// mirror and the offline queue live.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".saksham"
	}
	return filepath.Join(home, ".local", "share", "saksham")
}

// DefaultStorePath returns the default review store database path.
func DefaultStorePath() string {
	return filepath.Join(DefaultDataDir(), "review.db")
}

// DefaultQueuePath returns the default offline queue database path.
func DefaultQueuePath() string {
	return filepath.Join(DefaultDataDir(), "queue.db")
}
