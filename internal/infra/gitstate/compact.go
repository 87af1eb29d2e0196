package gitstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
)

// Compact removes loose objects left behind by ledgers that lost the race
// for refs/heads/main, then packs what remains.
func (s *Store) Compact(ctx context.Context, cutoff time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.repo.Prune(git.PruneOptions{
		OnlyObjectsOlderThan: cutoff,
		Handler:              s.repo.DeleteObject,
	})
	if err != nil && !errors.Is(err, git.ErrLooseObjectsNotSupported) {
		return fmt.Errorf("prune state repo: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.repo.RepackObjects(&git.RepackConfig{OnlyDeletePacksOlderThan: cutoff}); err != nil {
		return fmt.Errorf("repack state repo: %w", err)
	}
	return nil
}
