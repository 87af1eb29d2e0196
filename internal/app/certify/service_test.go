package certify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/osvaldoandrade/memostamp/internal/app/ledger"
	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/hash"
)

const testAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

type fakeLedger struct {
	submitted []domain.Transaction
	receipt   domain.Receipt
	submitErr error
	stamps    map[domain.MemoHash]int64
	lookedUp  []domain.MemoHash
}

func (f *fakeLedger) Submit(ctx context.Context, tx domain.Transaction) (domain.Receipt, error) {
	f.submitted = append(f.submitted, tx)
	return f.receipt, f.submitErr
}

func (f *fakeLedger) Lookup(ctx context.Context, h domain.MemoHash) (ledger.LookupResult, error) {
	f.lookedUp = append(f.lookedUp, h)
	ts, ok := f.stamps[h]
	return ledger.LookupResult{Hash: h, Found: ok, Timestamp: ts}, nil
}

func TestStampAmount(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 0, want: "0"},
		{size: 1, want: "10000000"},
		{size: 1000, want: "10000000"},
		{size: 1001, want: "20000000"},
		{size: 25_000, want: "250000000"},
	}
	for _, tc := range tests {
		if got := StampAmount(tc.size); got != tc.want {
			t.Fatalf("StampAmount(%d): expected %s, got %s", tc.size, tc.want, got)
		}
	}
}

func TestStampBuildsSelfPayment(t *testing.T) {
	fake := &fakeLedger{receipt: domain.Receipt{LedgerSeq: 1000, Outcome: domain.Accept("New timestamp stored", 0)}}
	svc := NewService(fake, hash.SHA256{}, testAccount)

	result, err := svc.Stamp(context.Background(), strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Stamp returned error: %v", err)
	}
	if len(fake.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(fake.submitted))
	}
	tx := fake.submitted[0]
	if tx.TxType != domain.TxTypePayment || tx.Account != testAccount || tx.Destination != testAccount {
		t.Fatalf("unexpected payment %+v", tx)
	}
	if tx.Fee != StampFee || tx.Amount != "10000000" {
		t.Fatalf("unexpected fee/amount %s/%s", tx.Fee, tx.Amount)
	}
	memo, err := tx.Field(domain.FieldMemoData)
	if err != nil {
		t.Fatalf("Field returned error: %v", err)
	}
	if !bytes.Equal(memo, result.Hash.Bytes()) || string(tx.Memos[0].Type) != MemoTypeHash {
		t.Fatalf("unexpected memo %+v", tx.Memos[0])
	}
	if result.Size != 5 || result.Timestamp != 1000 || result.Existing {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestStampReportsExistingTimestamp(t *testing.T) {
	fake := &fakeLedger{receipt: domain.Receipt{LedgerSeq: 1200, Outcome: domain.Accept("Timestamp found", 1000)}}
	svc := NewService(fake, hash.SHA256{}, testAccount)

	result, err := svc.Stamp(context.Background(), strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Stamp returned error: %v", err)
	}
	if !result.Existing || result.Timestamp != 1000 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestStampRejectedHasNoTimestamp(t *testing.T) {
	fake := &fakeLedger{receipt: domain.Receipt{LedgerSeq: 7, Outcome: domain.Rollback("Failed to store timestamp", -38)}}
	svc := NewService(fake, hash.SHA256{}, testAccount)

	result, err := svc.Stamp(context.Background(), strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stamp returned error: %v", err)
	}
	if result.Timestamp != 0 || result.Receipt.Outcome.Code != -38 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestStampRequiresAccount(t *testing.T) {
	svc := NewService(&fakeLedger{}, hash.SHA256{}, " ")
	if _, err := svc.Stamp(context.Background(), strings.NewReader("x")); !errors.Is(err, ErrAccountNotConfigured) {
		t.Fatalf("expected ErrAccountNotConfigured, got %v", err)
	}
}

func TestStampWrapsSubmitError(t *testing.T) {
	submitErr := errors.New("backend down")
	svc := NewService(&fakeLedger{submitErr: submitErr}, hash.SHA256{}, testAccount)
	if _, err := svc.Stamp(context.Background(), strings.NewReader("x")); !errors.Is(err, submitErr) {
		t.Fatalf("expected submit error, got %v", err)
	}
}

func TestCheckAndCheckHash(t *testing.T) {
	sum, _, err := (hash.SHA256{}).Digest(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Digest returned error: %v", err)
	}
	fake := &fakeLedger{stamps: map[domain.MemoHash]int64{sum: 1000}}
	svc := NewService(fake, hash.SHA256{}, "")

	found, err := svc.Check(context.Background(), strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !found.Found || found.Timestamp != 1000 {
		t.Fatalf("unexpected check result %+v", found)
	}

	missing, err := svc.CheckHash(context.Background(), strings.Repeat("00", 32))
	if err != nil {
		t.Fatalf("CheckHash returned error: %v", err)
	}
	if missing.Found {
		t.Fatalf("expected hash to be missing")
	}

	if _, err := svc.CheckHash(context.Background(), "abc"); !errors.Is(err, domain.ErrInvalidMemoHash) {
		t.Fatalf("expected ErrInvalidMemoHash, got %v", err)
	}
}
