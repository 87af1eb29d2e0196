package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const (
	casMaxRetries  = 5
	casBackoffBase = 25 * time.Millisecond
)

// Service is the ledger host: it closes one ledger per submitted
// transaction and runs the hook inside it. Submissions are serialized, so
// the hook never observes concurrent writers.
type Service struct {
	backend       StateBackend
	hook          Hook
	decoder       Decoder
	encoder       Encoder
	canonicalizer Canonicalizer
	hasher        Hasher
	clock         Clock
	idGen         IDGenerator
	genesisSeq    int64
	maxEntries    int64
	logger        *slog.Logger
	metrics       Metrics

	mu sync.Mutex
}

func NewService(backend StateBackend, hook Hook, decoder Decoder, encoder Encoder, canonicalizer Canonicalizer, hasher Hasher, clock Clock, idGen IDGenerator, opts Options) *Service {
	if opts.GenesisSeq <= 0 {
		opts.GenesisSeq = domain.DefaultGenesisSeq
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	return &Service{
		backend:       backend,
		hook:          hook,
		decoder:       decoder,
		encoder:       encoder,
		canonicalizer: canonicalizer,
		hasher:        hasher,
		clock:         clock,
		idGen:         idGen,
		genesisSeq:    opts.GenesisSeq,
		maxEntries:    opts.MaxStateEntries,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
}

func (s *Service) SubmitJSON(ctx context.Context, raw []byte) (domain.Receipt, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.Receipt{}, ErrPayloadRequired
	}
	tx, err := s.decoder.Decode(ctx, raw)
	if err != nil {
		return domain.Receipt{}, err
	}
	return s.Submit(ctx, tx)
}

// Submit applies tx in a new ledger. A hook rejection is not an error: it
// is reported in the receipt's outcome and its state writes are dropped.
func (s *Service) Submit(ctx context.Context, tx domain.Transaction) (domain.Receipt, error) {
	if err := tx.Validate(); err != nil {
		return domain.Receipt{}, err
	}

	encoded, err := s.encoder.Encode(tx)
	if err != nil {
		return domain.Receipt{}, err
	}
	canonical, err := s.canonicalizer.Canonicalize(ctx, encoded)
	if err != nil {
		return domain.Receipt{}, err
	}
	txHash := s.hasher.SumHex(canonical)

	txID, err := s.idGen.NewID()
	if err != nil {
		return domain.Receipt{}, err
	}

	start := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var receipt domain.Receipt
	apply := func() error {
		applied, err := s.apply(ctx, tx, txID, txHash)
		if err != nil {
			if errors.Is(err, domain.ErrLedgerChanged) {
				s.metrics.ObserveConflict()
				s.logger.Warn("ledger changed during submit, retrying", "tx_id", txID)
				return err
			}
			return backoff.Permanent(err)
		}
		receipt = applied
		return nil
	}
	if err := backoff.Retry(apply, s.retryPolicy(ctx)); err != nil {
		return domain.Receipt{}, err
	}

	s.metrics.ObserveSubmit(receipt.Outcome, s.clock.Now().Sub(start))
	s.logger.Info("ledger closed",
		"ledger", receipt.LedgerSeq,
		"tx_id", receipt.TxID,
		"outcome", receipt.Outcome.Status.String(),
		"code", receipt.Outcome.Code,
		"message", receipt.Outcome.Message,
	)
	return receipt, nil
}

func (s *Service) apply(ctx context.Context, tx domain.Transaction, txID, txHash string) (domain.Receipt, error) {
	stx, err := s.backend.Begin(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = stx.Rollback()
		}
	}()

	current, err := stx.Ledger(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}
	seq := current.Sequence + 1
	if seq < s.genesisSeq {
		seq = s.genesisSeq
	}

	host := newTxHost(tx, stx, seq, current, s.maxEntries, s.logger)
	outcome, err := s.hook.Record(ctx, host)
	var rejection *domain.RejectionError
	if err != nil && !errors.As(err, &rejection) {
		return domain.Receipt{}, err
	}

	entries := current.StateEntries
	if outcome.Accepted() {
		added, err := host.flush(ctx)
		if err != nil {
			return domain.Receipt{}, err
		}
		entries += added
	}

	closedAt := s.clock.Now().UTC()
	receipt := domain.Receipt{
		TxID:      txID,
		TxHash:    txHash,
		LedgerSeq: seq,
		ClosedAt:  closedAt,
		Account:   tx.Account,
		MemoHash:  memoHex(tx),
		Outcome:   outcome,
		Traces:    host.traces,
	}
	if err := stx.AppendReceipt(ctx, receipt); err != nil {
		return domain.Receipt{}, err
	}
	if err := stx.CloseLedger(ctx, domain.LedgerInfo{Sequence: seq, ClosedAt: closedAt, StateEntries: entries}); err != nil {
		return domain.Receipt{}, err
	}
	if err := stx.Commit(ctx); err != nil {
		return domain.Receipt{}, err
	}
	committed = true
	return receipt, nil
}

func (s *Service) retryPolicy(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = casBackoffBase
	policy.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(policy, casMaxRetries-1), ctx)
}

func (s *Service) Lookup(ctx context.Context, hash domain.MemoHash) (LookupResult, error) {
	result := LookupResult{Hash: hash}
	value, err := s.backend.GetState(ctx, hash.Bytes())
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return result, nil
		}
		return LookupResult{}, fmt.Errorf("lookup %s: %w", hash, err)
	}
	if ts, ok := domain.DecodeTimestamp(value); ok && ts > 0 {
		result.Found = true
		result.Timestamp = ts
	}
	return result, nil
}

func (s *Service) Latest(ctx context.Context) (domain.LedgerInfo, error) {
	return s.backend.Latest(ctx)
}

func (s *Service) Receipts(ctx context.Context, query domain.ReceiptQuery) ([]domain.Receipt, error) {
	if query.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	if query.Limit == 0 {
		query.Limit = DefaultReceiptLimit
	}
	if query.Limit > MaxReceiptLimit {
		query.Limit = MaxReceiptLimit
	}
	if query.MemoHash != "" {
		hash, err := domain.ParseMemoHash(query.MemoHash)
		if err != nil {
			return nil, err
		}
		query.MemoHash = hash.String()
	}
	return s.backend.ListReceipts(ctx, query)
}

func memoHex(tx domain.Transaction) string {
	data, err := tx.Field(domain.FieldMemoData)
	if err != nil {
		return ""
	}
	return strings.ToUpper(hex.EncodeToString(data))
}

type noopMetrics struct{}

func (noopMetrics) ObserveSubmit(domain.Outcome, time.Duration) {}

func (noopMetrics) ObserveConflict() {}
