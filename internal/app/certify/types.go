package certify

import "github.com/osvaldoandrade/memostamp/internal/domain"

const (
	StampFee       = "100000"
	MemoTypeHash   = "Hash"
	dropsPerKB     = 10_000_000
	bytesPerAmount = 1000
)

type StampResult struct {
	Hash    domain.MemoHash
	Size    int64
	Receipt domain.Receipt
	// Timestamp is the ledger that first recorded Hash, zero when the
	// hook rejected the stamp.
	Timestamp int64
	Existing  bool
}

type CheckResult struct {
	Hash      domain.MemoHash
	Found     bool
	Timestamp int64
}
