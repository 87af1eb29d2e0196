package httpapi

import (
	"context"
	"io"

	"github.com/osvaldoandrade/memostamp/internal/app/certify"
	"github.com/osvaldoandrade/memostamp/internal/app/ledger"
	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type Ledger interface {
	SubmitJSON(ctx context.Context, raw []byte) (domain.Receipt, error)
	Lookup(ctx context.Context, hash domain.MemoHash) (ledger.LookupResult, error)
	Latest(ctx context.Context) (domain.LedgerInfo, error)
	Receipts(ctx context.Context, query domain.ReceiptQuery) ([]domain.Receipt, error)
}

type Certifier interface {
	Stamp(ctx context.Context, content io.Reader) (certify.StampResult, error)
	Check(ctx context.Context, content io.Reader) (certify.CheckResult, error)
	CheckHash(ctx context.Context, hexHash string) (certify.CheckResult, error)
}
