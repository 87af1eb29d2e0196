package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/osvaldoandrade/memostamp/internal/app/paths"
	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

type fakeManifestStore struct {
	exists   bool
	manifest domain.Manifest
	dir      string
	writeErr error
	calls    *[]string
}

func (f *fakeManifestStore) Exists(dir string) (bool, error) {
	return f.exists, nil
}

func (f *fakeManifestStore) Load(dir string) (domain.Manifest, error) {
	return f.manifest, nil
}

func (f *fakeManifestStore) Write(dir string, manifest domain.Manifest) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, "manifest")
	}
	f.dir = dir
	f.manifest = manifest
	return f.writeErr
}

type fakeBackendStore struct {
	dir     string
	backend domain.Backend
	wal     bool
	latest  domain.LedgerInfo
	initErr error
	calls   *[]string
}

func (f *fakeBackendStore) Init(ctx context.Context, dir string, cfg domain.StoreConfig) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, "backend")
	}
	f.dir = dir
	f.backend = cfg.Backend
	f.wal = cfg.SQLiteWAL
	return f.initErr
}

func (f *fakeBackendStore) Latest(ctx context.Context, dir string, cfg domain.StoreConfig) (domain.LedgerInfo, error) {
	f.dir = dir
	f.backend = cfg.Backend
	f.wal = cfg.SQLiteWAL
	return f.latest, nil
}

func TestInitDefaults(t *testing.T) {
	var calls []string
	manifests := &fakeManifestStore{calls: &calls}
	backends := &fakeBackendStore{calls: &calls}
	now := time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC)
	svc := NewInitService(manifests, backends, fakeClock{now: now})

	manifest, err := svc.Init(context.Background(), "data", InitOptions{})
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	expectedDir, err := filepath.Abs("data")
	if err != nil {
		t.Fatalf("failed to build abs path: %v", err)
	}
	if backends.dir != expectedDir || manifests.dir != expectedDir {
		t.Fatalf("expected dir %q, got backend=%q manifest=%q", expectedDir, backends.dir, manifests.dir)
	}
	if manifest.Name != "data" || manifest.Backend != domain.BackendSQLite || manifest.GenesisSeq != domain.DefaultGenesisSeq {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	if !manifest.CreatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt %v, got %v", now, manifest.CreatedAt)
	}
	if len(calls) != 2 || calls[0] != "backend" || calls[1] != "manifest" {
		t.Fatalf("expected backend before manifest, got %v", calls)
	}
}

func TestInitUsesOptions(t *testing.T) {
	manifests := &fakeManifestStore{}
	backends := &fakeBackendStore{}
	svc := NewInitService(manifests, backends, fakeClock{now: time.Now()})

	manifest, err := svc.Init(context.Background(), "data", InitOptions{
		Name:            "notary",
		Backend:         domain.BackendGit,
		GenesisSeq:      1000,
		MaxStateEntries: 10,
		Account:         "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
	})
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if backends.backend != domain.BackendGit {
		t.Fatalf("expected git backend, got %q", backends.backend)
	}
	if manifest.Name != "notary" || manifest.GenesisSeq != 1000 || manifest.MaxStateEntries != 10 || manifest.Account == "" {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
}

func TestInitPassesWALToBackend(t *testing.T) {
	manifests := &fakeManifestStore{}
	backends := &fakeBackendStore{}
	svc := NewInitService(manifests, backends, fakeClock{now: time.Now()})

	manifest, err := svc.Init(context.Background(), "data", InitOptions{SQLiteWAL: true})
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if !backends.wal || backends.backend != domain.BackendSQLite {
		t.Fatalf("expected sqlite backend with WAL, got %q wal=%v", backends.backend, backends.wal)
	}
	if !manifest.SQLiteWAL || !manifests.manifest.SQLiteWAL {
		t.Fatalf("expected WAL recorded in manifest, got %+v", manifest)
	}
}

func TestInitValidation(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		opts InitOptions
		want error
	}{
		{name: "empty dir", dir: " ", want: paths.ErrDataDirRequired},
		{name: "negative genesis", dir: "data", opts: InitOptions{GenesisSeq: -1}, want: ErrInvalidGenesisSeq},
		{name: "negative reserve", dir: "data", opts: InitOptions{MaxStateEntries: -1}, want: ErrInvalidMaxEntries},
		{name: "bad account", dir: "data", opts: InitOptions{Account: "nope"}, want: domain.ErrInvalidAccount},
		{name: "wal on git", dir: "data", opts: InitOptions{Backend: domain.BackendGit, SQLiteWAL: true}, want: ErrWALRequiresSQLite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backends := &fakeBackendStore{}
			svc := NewInitService(&fakeManifestStore{}, backends, fakeClock{})
			_, err := svc.Init(context.Background(), tc.dir, tc.opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if backends.dir != "" {
				t.Fatalf("expected backend not to be initialized")
			}
		})
	}
}

func TestInitRejectsInitializedDir(t *testing.T) {
	svc := NewInitService(&fakeManifestStore{exists: true}, &fakeBackendStore{}, fakeClock{})
	if _, err := svc.Init(context.Background(), "data", InitOptions{}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestInitPropagatesBackendError(t *testing.T) {
	backendErr := errors.New("disk full")
	manifests := &fakeManifestStore{}
	svc := NewInitService(manifests, &fakeBackendStore{initErr: backendErr}, fakeClock{})
	if _, err := svc.Init(context.Background(), "data", InitOptions{}); !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if manifests.dir != "" {
		t.Fatalf("expected manifest not to be written")
	}
}
