package repo

import (
	"context"
	"time"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type ManifestStore interface {
	Exists(dir string) (bool, error)
	Load(dir string) (domain.Manifest, error)
	Write(dir string, manifest domain.Manifest) error
}

// BackendStore creates and inspects the state backend inside a data
// directory.
type BackendStore interface {
	Init(ctx context.Context, dir string, cfg domain.StoreConfig) error
	Latest(ctx context.Context, dir string, cfg domain.StoreConfig) (domain.LedgerInfo, error)
}

type Clock interface {
	Now() time.Time
}
