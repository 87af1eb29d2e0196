package domain

type RepoStatus struct {
	Path        string
	HasManifest bool
	Manifest    Manifest
	Ledger      LedgerInfo
}
