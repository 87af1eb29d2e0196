package domain

import "time"

const ManifestVersion = 1

const DefaultGenesisSeq int64 = 1

type Manifest struct {
	Version         int
	Name            string
	Backend         Backend
	GenesisSeq      int64
	MaxStateEntries int64
	Account         string
	SQLiteWAL       bool
	CreatedAt       time.Time
}

func NewManifest(name string, createdAt time.Time) Manifest {
	return Manifest{
		Version:    ManifestVersion,
		Name:       name,
		Backend:    DefaultBackend,
		GenesisSeq: DefaultGenesisSeq,
		CreatedAt:  createdAt.UTC(),
	}
}

func (m Manifest) Store() StoreConfig {
	return StoreConfig{Backend: m.Backend, SQLiteWAL: m.SQLiteWAL}
}

func (m Manifest) WithDefaults() Manifest {
	if m.Version == 0 {
		m.Version = ManifestVersion
	}
	if m.Backend == "" {
		m.Backend = DefaultBackend
	}
	if m.GenesisSeq <= 0 {
		m.GenesisSeq = DefaultGenesisSeq
	}
	if m.MaxStateEntries < 0 {
		m.MaxStateEntries = 0
	}
	return m
}
