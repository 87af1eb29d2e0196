// Package hook implements the memo timestamp hook: the first time a memo
// hash is seen its ledger sequence is recorded, and later transactions
// carrying the same hash get that sequence back.
package hook

import (
	"context"
	"errors"
	"fmt"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record runs the hook once against host. Rejected outcomes are also
// returned as a *domain.RejectionError. A cancelled context is the only
// error that comes back without an outcome.
func (r *Recorder) Record(ctx context.Context, host Host) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, err
	}

	memo, err := host.OtxnField(ctx, domain.FieldMemoData)
	if err != nil {
		return reject(CodeMemoMissing, MsgMemoMissing, fmt.Errorf("%w: %v", ErrMemoMissing, err))
	}

	hash, err := domain.MemoHashFromBytes(memo)
	if err != nil {
		return reject(CodeMemoMalformed, MsgMemoMalformed, fmt.Errorf("%w: %v", ErrMemoMalformed, err))
	}
	key := hash.Bytes()

	existing, err := host.State(ctx, key)
	switch {
	case err == nil:
		if ts, ok := domain.DecodeTimestamp(existing); ok && ts > 0 {
			host.TraceNum(TraceExisting, ts)
			return domain.Accept(MsgTimestampFound, ts), nil
		}
	case errors.Is(err, domain.ErrStateNotFound):
	default:
		return reject(int64(domain.StatusOf(err)), MsgReadFailed, fmt.Errorf("%w: %w", ErrReadFailed, err))
	}

	current := host.LedgerSeq(ctx)
	if err := host.SetState(ctx, key, domain.EncodeTimestamp(current)); err != nil {
		return reject(int64(domain.StatusOf(err)), MsgStoreFailed, fmt.Errorf("%w: %w", ErrStoreFailed, err))
	}

	host.TraceNum(TraceStored, current)
	return domain.Accept(MsgTimestampStored, 0), nil
}

func reject(code int64, message string, cause error) (domain.Outcome, error) {
	outcome := domain.Rollback(message, code)
	return outcome, &domain.RejectionError{Code: code, Message: message, Err: cause}
}
