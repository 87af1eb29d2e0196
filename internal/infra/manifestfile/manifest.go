package manifestfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

var ErrManifestNotFound = errors.New("manifest not found")

type document struct {
	Version         int    `yaml:"version"`
	Name            string `yaml:"name"`
	Backend         string `yaml:"backend"`
	GenesisSeq      int64  `yaml:"genesis_seq"`
	MaxStateEntries int64  `yaml:"max_state_entries,omitempty"`
	Account         string `yaml:"account,omitempty"`
	SQLiteWAL       bool   `yaml:"sqlite_wal,omitempty"`
	CreatedAt       string `yaml:"created_at,omitempty"`
}

// Store reads and writes memostamp.yaml at the root of a data directory.
type Store struct{}

func Path(dir string) string {
	return filepath.Join(dir, domain.ManifestFile)
}

func (Store) Exists(dir string) (bool, error) {
	_, err := os.Stat(Path(dir))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat manifest: %w", err)
}

func (Store) Load(dir string) (domain.Manifest, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Manifest{}, ErrManifestNotFound
		}
		return domain.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

func (Store) Write(dir string, manifest domain.Manifest) error {
	data, err := Render(manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(Path(dir), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func Render(manifest domain.Manifest) ([]byte, error) {
	manifest = manifest.WithDefaults()
	doc := document{
		Version:         manifest.Version,
		Name:            manifest.Name,
		Backend:         string(manifest.Backend),
		GenesisSeq:      manifest.GenesisSeq,
		MaxStateEntries: manifest.MaxStateEntries,
		Account:         manifest.Account,
		SQLiteWAL:       manifest.SQLiteWAL,
	}
	if !manifest.CreatedAt.IsZero() {
		doc.CreatedAt = manifest.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

func Parse(data []byte) (domain.Manifest, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}

	manifest := domain.Manifest{
		Version:         doc.Version,
		Name:            doc.Name,
		GenesisSeq:      doc.GenesisSeq,
		MaxStateEntries: doc.MaxStateEntries,
		Account:         doc.Account,
		SQLiteWAL:       doc.SQLiteWAL,
	}
	if doc.Backend != "" {
		backend, err := domain.ParseBackend(doc.Backend)
		if err != nil {
			return domain.Manifest{}, fmt.Errorf("parse manifest backend: %w", err)
		}
		manifest.Backend = backend
	}
	if doc.CreatedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, doc.CreatedAt)
		if err != nil {
			return domain.Manifest{}, fmt.Errorf("parse manifest created_at: %w", err)
		}
		manifest.CreatedAt = parsed.UTC()
	}
	if manifest.Version > domain.ManifestVersion {
		return domain.Manifest{}, fmt.Errorf("unsupported manifest version %d", manifest.Version)
	}
	return manifest.WithDefaults(), nil
}
