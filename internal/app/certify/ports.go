package certify

import (
	"context"
	"io"

	"github.com/osvaldoandrade/memostamp/internal/app/ledger"
	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type Ledger interface {
	Submit(ctx context.Context, tx domain.Transaction) (domain.Receipt, error)
	Lookup(ctx context.Context, hash domain.MemoHash) (ledger.LookupResult, error)
}

type Digester interface {
	Digest(r io.Reader) (domain.MemoHash, int64, error)
}
