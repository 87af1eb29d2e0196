package integrity

import (
	"context"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

// Store is the read side of a state backend. ListReceipts with a zero
// limit returns every receipt.
type Store interface {
	Latest(ctx context.Context) (domain.LedgerInfo, error)
	ListReceipts(ctx context.Context, query domain.ReceiptQuery) ([]domain.Receipt, error)
	GetState(ctx context.Context, key []byte) ([]byte, error)
}

type VerifyOptions struct {
	// Deep also reads the hook state entry of every stamped hash.
	Deep bool
}

type VerifyResult struct {
	Ledger   domain.LedgerInfo
	Receipts int
	Stamps   int
	Valid    int
	Issues   []Issue
}

type Issue struct {
	Subject string
	Code    string
	Message string
}
