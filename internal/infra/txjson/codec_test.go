package txjson

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/osvaldoandrade/memostamp/internal/domain"
	"github.com/osvaldoandrade/memostamp/internal/infra/schema"
)

const testAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

func TestDecodePaymentWithPlainMemoType(t *testing.T) {
	raw := `{"TransactionType":"Payment","Account":"` + testAccount + `","Destination":"` + testAccount + `",` +
		`"Amount":"10000000","Fee":"100000","Memos":[{"Memo":{"MemoType":"Hash","MemoData":"` + strings.Repeat("AB", 32) + `"}}]}`

	tx, err := NewCodec(nil).Decode(context.Background(), []byte(raw))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if tx.TxType != domain.TxTypePayment || tx.Fee != "100000" || tx.Amount != "10000000" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	memo, err := tx.Field(domain.FieldMemoData)
	if err != nil {
		t.Fatalf("Field returned error: %v", err)
	}
	if !bytes.Equal(memo, bytes.Repeat([]byte{0xAB}, 32)) {
		t.Fatalf("unexpected memo data %x", memo)
	}
	if string(tx.Memos[0].Type) != "Hash" {
		t.Fatalf("unexpected memo type %q", tx.Memos[0].Type)
	}
}

func TestEncodeThenDecode(t *testing.T) {
	codec := NewCodec(nil)
	tx := domain.Transaction{
		TxType:   domain.TxTypePayment,
		Account:  testAccount,
		Sequence: 9,
		Memos:    []domain.Memo{{Type: []byte("Hash"), Data: []byte{1, 2, 3}}},
	}

	encoded, err := codec.Encode(tx)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !bytes.Contains(encoded, []byte(`"MemoType":"48617368"`)) {
		t.Fatalf("expected hex memo type in %s", encoded)
	}

	decoded, err := codec.Decode(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if decoded.Sequence != 9 || string(decoded.Memos[0].Type) != "Hash" || !bytes.Equal(decoded.Memos[0].Data, []byte{1, 2, 3}) {
		t.Fatalf("unexpected decoded transaction %+v", decoded)
	}
}

func TestDecodeMemoDataPresence(t *testing.T) {
	tests := []struct {
		name    string
		memo    string
		present bool
	}{
		{name: "absent", memo: `{"MemoType":"Hash"}`},
		{name: "empty", memo: `{"MemoData":""}`, present: true},
		{name: "bytes", memo: `{"MemoData":"0102"}`, present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"TransactionType":"Payment","Account":"` + testAccount + `","Memos":[{"Memo":` + tt.memo + `}]}`
			tx, err := NewCodec(nil).Decode(context.Background(), []byte(raw))
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			_, err = tx.Field(domain.FieldMemoData)
			if tt.present && err != nil {
				t.Fatalf("expected memo data field, got %v", err)
			}
			if !tt.present && !errors.Is(err, domain.ErrFieldNotFound) {
				t.Fatalf("expected ErrFieldNotFound, got %v", err)
			}
		})
	}
}

func TestEncodeKeepsEmptyMemoData(t *testing.T) {
	codec := NewCodec(nil)
	tx := domain.Transaction{
		TxType:  domain.TxTypePayment,
		Account: testAccount,
		Memos:   []domain.Memo{{Data: []byte{}}, {Type: []byte("Hash")}},
	}
	encoded, err := codec.Encode(tx)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !bytes.Contains(encoded, []byte(`"MemoData":""`)) {
		t.Fatalf("expected empty MemoData in %s", encoded)
	}
	if bytes.Count(encoded, []byte("MemoData")) != 1 {
		t.Fatalf("expected absent MemoData to stay absent in %s", encoded)
	}
}

func TestDecodeRejectsBadMemoData(t *testing.T) {
	raw := `{"TransactionType":"Payment","Account":"` + testAccount + `","Memos":[{"Memo":{"MemoData":"ZZ"}}]}`
	if _, err := NewCodec(nil).Decode(context.Background(), []byte(raw)); !errors.Is(err, ErrInvalidMemoData) {
		t.Fatalf("expected ErrInvalidMemoData, got %v", err)
	}
}

func TestDecodeRunsSchemaValidation(t *testing.T) {
	validator, err := schema.NewTransactionValidator()
	if err != nil {
		t.Fatalf("NewTransactionValidator returned error: %v", err)
	}
	_, err = NewCodec(validator).Decode(context.Background(), []byte(`{"TransactionType":"Payment"}`))
	if !errors.Is(err, schema.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}
