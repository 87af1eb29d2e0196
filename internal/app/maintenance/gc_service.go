package maintenance

import (
	"context"
	"fmt"
)

type GCService struct {
	compactor Compactor
	clock     Clock
}

func NewGCService(compactor Compactor, clock Clock) *GCService {
	return &GCService{compactor: compactor, clock: clock}
}

func (s *GCService) GC(ctx context.Context, opts GCOptions) (GCResult, error) {
	if opts.PruneAge < 0 {
		return GCResult{}, ErrInvalidPruneAge
	}
	if err := ctx.Err(); err != nil {
		return GCResult{}, err
	}

	cutoff := s.clock.Now().Add(-opts.PruneAge)
	if err := s.compactor.Compact(ctx, cutoff); err != nil {
		return GCResult{}, fmt.Errorf("compact state: %w", err)
	}
	return GCResult{Cutoff: cutoff}, nil
}
