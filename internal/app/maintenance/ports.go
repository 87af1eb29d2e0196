package maintenance

import (
	"context"
	"time"
)

// Compactor is implemented by each state backend. Objects or pages that
// nothing references and that are older than cutoff may be dropped.
type Compactor interface {
	Compact(ctx context.Context, cutoff time.Time) error
}

type Clock interface {
	Now() time.Time
}
