package domain

import (
	"fmt"
	"strings"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendGit    Backend = "git"
)

const DefaultBackend = BackendSQLite

func (b Backend) IsValid() bool {
	return b == BackendSQLite || b == BackendGit
}

func ParseBackend(value string) (Backend, error) {
	parsed := Backend(strings.ToLower(strings.TrimSpace(value)))
	if parsed == "" {
		return "", fmt.Errorf("state backend is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid state backend: %s", value)
	}
	return parsed, nil
}

// StoreConfig selects the state backend of a data directory and how it is
// opened. SQLiteWAL only applies to the sqlite backend.
type StoreConfig struct {
	Backend   Backend
	SQLiteWAL bool
}

func NormalizeBackend(backend Backend) Backend {
	if backend.IsValid() {
		return backend
	}
	return DefaultBackend
}
