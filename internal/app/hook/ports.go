package hook

import (
	"context"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

// FieldReader returns domain.ErrFieldNotFound for absent fields.
type FieldReader interface {
	OtxnField(ctx context.Context, field domain.FieldCode) ([]byte, error)
}

// StateStore returns domain.ErrStateNotFound for absent keys. SetState
// failures carry a *domain.StatusError with the host status.
type StateStore interface {
	State(ctx context.Context, key []byte) ([]byte, error)
	SetState(ctx context.Context, key, value []byte) error
}

type SequenceSource interface {
	LedgerSeq(ctx context.Context) int64
}

type Tracer interface {
	TraceNum(label string, value int64)
}

// Host is the per-transaction binding the runtime hands to a hook.
type Host interface {
	FieldReader
	StateStore
	SequenceSource
	Tracer
}
