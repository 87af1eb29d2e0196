package memostampsdk

import (
	"log/slog"
	"strings"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendGit    Backend = "git"
)

// Config defines how the SDK opens a data directory.
type Config struct {
	DataDir string
	// Account overrides the manifest's stamping account.
	Account string
	// Init creates the data directory when it has no manifest yet.
	Init            bool
	Name            string
	Backend         Backend
	GenesisSeq      int64
	MaxStateEntries int64
	// SQLiteWAL turns on write-ahead logging for a new SQLite ledger.
	SQLiteWAL bool
	Logger    *slog.Logger
}

// DefaultConfig opens dataDir and initializes it on first use with the
// SQLite backend.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir: dataDir,
		Init:    true,
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	cfg.DataDir = strings.TrimSpace(cfg.DataDir)
	if cfg.DataDir == "" {
		return cfg, ErrDataDirRequired
	}
	return cfg, nil
}
