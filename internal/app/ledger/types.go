package ledger

import (
	"log/slog"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const (
	MaxStateValueSize   = 256
	DefaultReceiptLimit = 20
	MaxReceiptLimit     = 1000
)

type Options struct {
	GenesisSeq      int64
	MaxStateEntries int64
	Logger          *slog.Logger
	Metrics         Metrics
}

type LookupResult struct {
	Hash      domain.MemoHash
	Found     bool
	Timestamp int64
}
