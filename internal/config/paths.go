package config

import (
	"os"
	"path/filepath"
)

// homeEnvVar overrides the default ~/.chitragupta home directory.
const homeEnvVar = "CHITRAGUPTA_HOME"

// Subdirectory names under the home directory.
const (
	GraphRAGDir = "graphrag"
	MemoryDir   = "memory"
	SmaranDir   = "smaran"
)

// HomeDir returns the root data directory: $CHITRAGUPTA_HOME if set,
// otherwise ~/.chitragupta.
func HomeDir() (string, error) {
	if dir := os.Getenv(homeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chitragupta"), nil
}

// EnsureHomeDirs creates the home directory and its graphrag/memory/smaran
// subdirectories if they don't already exist.
func EnsureHomeDirs(home string) error {
	for _, sub := range []string{"", GraphRAGDir, MemoryDir, SmaranDir} {
		if err := os.MkdirAll(filepath.Join(home, sub), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// GraphRAGPath returns the default SQLite database path under home.
func GraphRAGPath(home string) string {
	return filepath.Join(home, GraphRAGDir, "graph.db")
}

// MemoryPath returns the directory that holds session transcript files.
func MemoryPath(home string) string {
	return filepath.Join(home, MemoryDir)
}

// SmaranPath returns the directory that holds smaran fact entry files.
func SmaranPath(home string) string {
	return filepath.Join(home, SmaranDir)
}
