package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

// txHost binds one transaction to the ledger being closed. Hook writes are
// staged in pending and reach the backend only through flush, so a
// rejected outcome leaves no trace in state.
type txHost struct {
	tx          domain.Transaction
	stx         StateTx
	seq         int64
	maxEntries  int64
	baseEntries int64
	logger      *slog.Logger

	pending map[string][]byte
	order   []string
	added   int64
	traces  []domain.Trace
}

func newTxHost(tx domain.Transaction, stx StateTx, seq int64, info domain.LedgerInfo, maxEntries int64, logger *slog.Logger) *txHost {
	return &txHost{
		tx:          tx,
		stx:         stx,
		seq:         seq,
		maxEntries:  maxEntries,
		baseEntries: info.StateEntries,
		logger:      logger,
		pending:     make(map[string][]byte),
	}
}

func (h *txHost) OtxnField(ctx context.Context, field domain.FieldCode) ([]byte, error) {
	return h.tx.Field(field)
}

func (h *txHost) State(ctx context.Context, key []byte) ([]byte, error) {
	if value, ok := h.pending[string(key)]; ok {
		return append([]byte(nil), value...), nil
	}
	return h.stx.GetState(ctx, key)
}

func (h *txHost) SetState(ctx context.Context, key, value []byte) error {
	switch {
	case len(key) == 0:
		return &domain.StatusError{Status: domain.StatusTooSmall, Op: "state_set"}
	case len(key) > domain.MemoHashSize:
		return &domain.StatusError{Status: domain.StatusTooBig, Op: "state_set"}
	case len(value) > MaxStateValueSize:
		return &domain.StatusError{Status: domain.StatusTooBig, Op: "state_set"}
	}

	exists, err := h.exists(ctx, key)
	if err != nil {
		return &domain.StatusError{Status: domain.StatusInternalError, Op: "state_set", Err: err}
	}
	if !exists {
		if h.maxEntries > 0 && h.baseEntries+h.added+1 > h.maxEntries {
			return &domain.StatusError{
				Status: domain.StatusReserveInsufficient,
				Op:     "state_set",
				Err:    fmt.Errorf("state holds %d of %d entries", h.baseEntries+h.added, h.maxEntries),
			}
		}
		h.added++
	}

	k := string(key)
	if _, staged := h.pending[k]; !staged {
		h.order = append(h.order, k)
	}
	h.pending[k] = append([]byte(nil), value...)
	return nil
}

func (h *txHost) LedgerSeq(ctx context.Context) int64 {
	return h.seq
}

func (h *txHost) TraceNum(label string, value int64) {
	h.traces = append(h.traces, domain.Trace{Label: label, Value: value})
	h.logger.Debug("hook trace", "ledger", h.seq, "label", label, "value", value)
}

func (h *txHost) exists(ctx context.Context, key []byte) (bool, error) {
	if _, ok := h.pending[string(key)]; ok {
		return true, nil
	}
	_, err := h.stx.GetState(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrStateNotFound) {
		return false, nil
	}
	return false, err
}

// flush writes staged entries in the order the hook set them and returns
// how many of them are new keys.
func (h *txHost) flush(ctx context.Context) (int64, error) {
	for _, key := range h.order {
		if err := h.stx.PutState(ctx, []byte(key), h.pending[key]); err != nil {
			return 0, fmt.Errorf("flush state: %w", err)
		}
	}
	return h.added, nil
}
