package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/osvaldoandrade/memostamp/internal/app/paths"
	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type InitService struct {
	manifests ManifestStore
	backends  BackendStore
	clock     Clock
}

type InitOptions struct {
	Name            string
	Backend         domain.Backend
	GenesisSeq      int64
	MaxStateEntries int64
	Account         string
	SQLiteWAL       bool
}

func NewInitService(manifests ManifestStore, backends BackendStore, clock Clock) *InitService {
	return &InitService{
		manifests: manifests,
		backends:  backends,
		clock:     clock,
	}
}

// Init creates the state backend and then the manifest, so a directory
// with a manifest always has a usable backend.
func (s *InitService) Init(ctx context.Context, dir string, opts InitOptions) (domain.Manifest, error) {
	absPath, err := paths.NormalizeDataDir(dir)
	if err != nil {
		return domain.Manifest{}, err
	}

	if opts.GenesisSeq < 0 {
		return domain.Manifest{}, ErrInvalidGenesisSeq
	}
	if opts.MaxStateEntries < 0 {
		return domain.Manifest{}, ErrInvalidMaxEntries
	}
	account := strings.TrimSpace(opts.Account)
	if account != "" && !domain.IsValidAccount(account) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrInvalidAccount, account)
	}
	backend := opts.Backend
	if backend == "" {
		backend = domain.DefaultBackend
	}
	if !backend.IsValid() {
		return domain.Manifest{}, fmt.Errorf("invalid state backend: %s", backend)
	}
	if opts.SQLiteWAL && backend != domain.BackendSQLite {
		return domain.Manifest{}, ErrWALRequiresSQLite
	}

	exists, err := s.manifests.Exists(absPath)
	if err != nil {
		return domain.Manifest{}, err
	}
	if exists {
		return domain.Manifest{}, fmt.Errorf("%w: %s", ErrAlreadyInitialized, absPath)
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = filepath.Base(absPath)
	}

	manifest := domain.NewManifest(name, s.clock.Now())
	manifest.Backend = backend
	manifest.SQLiteWAL = opts.SQLiteWAL
	if err := s.backends.Init(ctx, absPath, manifest.Store()); err != nil {
		return domain.Manifest{}, err
	}

	manifest.GenesisSeq = opts.GenesisSeq
	manifest.MaxStateEntries = opts.MaxStateEntries
	manifest.Account = account
	manifest = manifest.WithDefaults()
	if err := s.manifests.Write(absPath, manifest); err != nil {
		return domain.Manifest{}, err
	}
	return manifest, nil
}
