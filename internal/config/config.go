// Package config provides explicit configuration for cmdrecall components.
//
// All knobs are resolved once in FromEnv and passed into constructors as a
// struct; no other package reads environment variables for these settings.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment variable names recognized by FromEnv.
const (
	EnvDBPath   = "CMDRECALL_DB"
	EnvBackend  = "CMDRECALL_BACKEND"
	EnvForceCPU = "CMDRECALL_FORCE_CPU"
)

// Backend names accepted in Config.Backend.
const (
	BackendAuto  = ""
	BackendTFIDF = "tfidf"
	BackendDense = "dense"
	BackendNone  = "none"
)

// Config carries the settings shared by the ranking engine, the embedding
// generator, and the MCP server.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string

	// Backend pins a similarity backend ("tfidf", "dense", "none").
	// Empty selects automatically in fixed precedence order.
	Backend string

	// ForceCPUOnly disables accelerator use in local embedding providers.
	ForceCPUOnly bool
}

// FromEnv builds a Config from the environment, falling back to defaults.
func FromEnv() Config {
	cfg := Config{
		DBPath:       os.Getenv(EnvDBPath),
		Backend:      strings.ToLower(os.Getenv(EnvBackend)),
		ForceCPUOnly: boolEnv(EnvForceCPU),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg
}

// DefaultDBPath returns the default database location in the user's home
// directory. Falls back to a relative path when the home directory cannot
// be resolved.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cmdrecall", "history.db")
	}
	return filepath.Join(home, ".cmdrecall", "history.db")
}

func boolEnv(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
