// Package statestore picks the state backend named in the manifest.
package statestore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/osvaldoandrade/memostamp/internal/app/ledger"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/gitstate"
	"github.com/osvaldoandrade/memostamp/internal/infra/sqlitestate"
)

type Backend interface {
	ledger.StateBackend
	Compact(ctx context.Context, cutoff time.Time) error
	Close() error
}

type Stores struct{}

func Open(dir string, cfg domain.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case domain.BackendSQLite:
		store, err := openSQLite(dir, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.BackendGit:
		store, err := gitstate.Open(filepath.Join(dir, domain.GitDir))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid state backend: %s", cfg.Backend)
	}
}

func (Stores) Init(ctx context.Context, dir string, cfg domain.StoreConfig) error {
	switch cfg.Backend {
	case domain.BackendSQLite:
		store, err := openSQLite(dir, cfg)
		if err != nil {
			return err
		}
		return store.Close()
	case domain.BackendGit:
		store, err := gitstate.Init(ctx, filepath.Join(dir, domain.GitDir))
		if err != nil {
			return err
		}
		return store.Close()
	default:
		return fmt.Errorf("invalid state backend: %s", cfg.Backend)
	}
}

func (Stores) Latest(ctx context.Context, dir string, cfg domain.StoreConfig) (domain.LedgerInfo, error) {
	store, err := Open(dir, cfg)
	if err != nil {
		return domain.LedgerInfo{}, err
	}
	defer func() {
		_ = store.Close()
	}()
	return store.Latest(ctx)
}

func openSQLite(dir string, cfg domain.StoreConfig) (*sqlitestate.Store, error) {
	return sqlitestate.OpenWithOptions(filepath.Join(dir, domain.SQLiteFile), sqlitestate.OpenOptions{WAL: cfg.SQLiteWAL})
}
