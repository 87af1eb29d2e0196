// Package certify stamps files on the ledger: the SHA-256 of the content
// becomes the memo of a self payment, and the hook records the ledger
// where that hash was first seen.
package certify

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

type Service struct {
	ledger   Ledger
	digester Digester
	account  string
}

func NewService(ledger Ledger, digester Digester, account string) *Service {
	return &Service{
		ledger:   ledger,
		digester: digester,
		account:  strings.TrimSpace(account),
	}
}

func (s *Service) Stamp(ctx context.Context, content io.Reader) (StampResult, error) {
	if s.account == "" {
		return StampResult{}, ErrAccountNotConfigured
	}

	hash, size, err := s.digester.Digest(content)
	if err != nil {
		return StampResult{}, err
	}

	receipt, err := s.ledger.Submit(ctx, StampTransaction(s.account, hash, size))
	if err != nil {
		return StampResult{}, fmt.Errorf("submit stamp %s: %w", hash, err)
	}

	result := StampResult{Hash: hash, Size: size, Receipt: receipt}
	if receipt.Outcome.Accepted() {
		if receipt.Outcome.Code > 0 {
			result.Existing = true
			result.Timestamp = receipt.Outcome.Code
		} else {
			result.Timestamp = receipt.LedgerSeq
		}
	}
	return result, nil
}

func (s *Service) Check(ctx context.Context, content io.Reader) (CheckResult, error) {
	hash, _, err := s.digester.Digest(content)
	if err != nil {
		return CheckResult{}, err
	}
	return s.lookup(ctx, hash)
}

func (s *Service) CheckHash(ctx context.Context, hexHash string) (CheckResult, error) {
	hash, err := domain.ParseMemoHash(hexHash)
	if err != nil {
		return CheckResult{}, err
	}
	return s.lookup(ctx, hash)
}

func (s *Service) lookup(ctx context.Context, hash domain.MemoHash) (CheckResult, error) {
	found, err := s.ledger.Lookup(ctx, hash)
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{Hash: hash, Found: found.Found, Timestamp: found.Timestamp}, nil
}

// StampTransaction builds the self payment that carries hash. The amount
// is 10 XRP-equivalent drops per started kilobyte of content.
func StampTransaction(account string, hash domain.MemoHash, size int64) domain.Transaction {
	return domain.Transaction{
		TxType:      domain.TxTypePayment,
		Account:     account,
		Destination: account,
		Amount:      StampAmount(size),
		Fee:         StampFee,
		Memos: []domain.Memo{{
			Type: []byte(MemoTypeHash),
			Data: hash.Bytes(),
		}},
	}
}

func StampAmount(size int64) string {
	if size <= 0 {
		return "0"
	}
	units := (size + bytesPerAmount - 1) / bytesPerAmount
	return strconv.FormatInt(units*dropsPerKB, 10)
}
