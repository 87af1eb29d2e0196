package ledger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

func newTestHost(backend *memBackend, maxEntries int64) *txHost {
	stx, _ := backend.Begin(context.Background())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newTxHost(domain.Transaction{}, stx, 7, backend.ledger, maxEntries, logger)
}

func TestTxHostSetStateLimits(t *testing.T) {
	key := bytes.Repeat([]byte{1}, 32)
	tests := []struct {
		name   string
		key    []byte
		value  []byte
		status domain.HostStatus
	}{
		{name: "empty key", key: nil, value: []byte{1}, status: domain.StatusTooSmall},
		{name: "long key", key: bytes.Repeat([]byte{1}, 33), value: []byte{1}, status: domain.StatusTooBig},
		{name: "large value", key: key, value: make([]byte, MaxStateValueSize+1), status: domain.StatusTooBig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			host := newTestHost(newMemBackend(), 0)
			err := host.SetState(context.Background(), tc.key, tc.value)
			var statusErr *domain.StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, statusErr.Status)
			}
		})
	}
}

func TestTxHostStagesWritesUntilFlush(t *testing.T) {
	backend := newMemBackend()
	host := newTestHost(backend, 0)
	key := bytes.Repeat([]byte{9}, 32)

	if err := host.SetState(context.Background(), key, domain.EncodeTimestamp(7)); err != nil {
		t.Fatalf("SetState returned error: %v", err)
	}
	if backend.puts != 0 {
		t.Fatalf("expected no backend writes before flush")
	}

	value, err := host.State(context.Background(), key)
	if err != nil {
		t.Fatalf("State returned error: %v", err)
	}
	if ts, _ := domain.DecodeTimestamp(value); ts != 7 {
		t.Fatalf("expected staged timestamp 7, got %d", ts)
	}

	if err := host.SetState(context.Background(), key, domain.EncodeTimestamp(8)); err != nil {
		t.Fatalf("second SetState returned error: %v", err)
	}
	added, err := host.flush(context.Background())
	if err != nil {
		t.Fatalf("flush returned error: %v", err)
	}
	if added != 1 || backend.puts != 1 {
		t.Fatalf("expected one new entry and one write, got added=%d puts=%d", added, backend.puts)
	}
}

func TestTxHostReserve(t *testing.T) {
	backend := newMemBackend()
	existing := bytes.Repeat([]byte{1}, 32)
	backend.state[string(existing)] = domain.EncodeTimestamp(1)
	backend.ledger.StateEntries = 1
	host := newTestHost(backend, 1)

	if err := host.SetState(context.Background(), existing, domain.EncodeTimestamp(2)); err != nil {
		t.Fatalf("overwrite should not need reserve: %v", err)
	}
	err := host.SetState(context.Background(), bytes.Repeat([]byte{2}, 32), domain.EncodeTimestamp(2))
	if domain.StatusOf(err) != domain.StatusReserveInsufficient {
		t.Fatalf("expected reserve insufficient, got %v", err)
	}
}

func TestTxHostTraces(t *testing.T) {
	host := newTestHost(newMemBackend(), 0)
	host.TraceNum("label: ", 3)
	if len(host.traces) != 1 || host.traces[0].Value != 3 {
		t.Fatalf("unexpected traces %+v", host.traces)
	}
	if host.LedgerSeq(context.Background()) != 7 {
		t.Fatalf("expected ledger seq 7")
	}
}
