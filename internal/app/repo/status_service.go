package repo

import (
	"context"

	"github.com/osvaldoandrade/memostamp/internal/app/paths"
	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type StatusService struct {
	manifests ManifestStore
	backends  BackendStore
}

func NewStatusService(manifests ManifestStore, backends BackendStore) *StatusService {
	return &StatusService{manifests: manifests, backends: backends}
}

// Status reports an uninitialized directory as HasManifest false rather
// than as an error.
func (s *StatusService) Status(ctx context.Context, dir string) (domain.RepoStatus, error) {
	absPath, err := paths.NormalizeDataDir(dir)
	if err != nil {
		return domain.RepoStatus{}, err
	}

	status := domain.RepoStatus{Path: absPath}
	exists, err := s.manifests.Exists(absPath)
	if err != nil {
		return domain.RepoStatus{}, err
	}
	if !exists {
		return status, nil
	}

	manifest, err := s.manifests.Load(absPath)
	if err != nil {
		return domain.RepoStatus{}, err
	}
	status.HasManifest = true
	status.Manifest = manifest

	info, err := s.backends.Latest(ctx, absPath, manifest.Store())
	if err != nil {
		return domain.RepoStatus{}, err
	}
	status.Ledger = info
	return status, nil
}
