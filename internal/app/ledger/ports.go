package ledger

import (
	"context"
	"time"

	"github.com/osvaldoandrade/memostamp/internal/app/hook"
	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type Hook interface {
	Record(ctx context.Context, host hook.Host) (domain.Outcome, error)
}

// StateBackend is the durable store behind the ledger. GetState returns
// domain.ErrStateNotFound for absent keys.
type StateBackend interface {
	Begin(ctx context.Context) (StateTx, error)
	GetState(ctx context.Context, key []byte) ([]byte, error)
	Latest(ctx context.Context) (domain.LedgerInfo, error)
	ListReceipts(ctx context.Context, query domain.ReceiptQuery) ([]domain.Receipt, error)
}

// StateTx groups the writes of one closed ledger. Commit returns
// domain.ErrLedgerChanged when another writer closed a ledger first.
type StateTx interface {
	Ledger(ctx context.Context) (domain.LedgerInfo, error)
	GetState(ctx context.Context, key []byte) ([]byte, error)
	PutState(ctx context.Context, key, value []byte) error
	AppendReceipt(ctx context.Context, receipt domain.Receipt) error
	CloseLedger(ctx context.Context, info domain.LedgerInfo) error
	Commit(ctx context.Context) error
	Rollback() error
}

type Decoder interface {
	Decode(ctx context.Context, raw []byte) (domain.Transaction, error)
}

type Encoder interface {
	Encode(tx domain.Transaction) ([]byte, error)
}

type Canonicalizer interface {
	Canonicalize(ctx context.Context, input []byte) ([]byte, error)
}

type Hasher interface {
	SumHex(data []byte) string
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() (string, error)
}

type Metrics interface {
	ObserveSubmit(outcome domain.Outcome, elapsed time.Duration)
	ObserveConflict()
}
