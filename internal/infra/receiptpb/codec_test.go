package receiptpb

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

func TestEncodeDecodeRejectedReceipt(t *testing.T) {
	receipt := domain.Receipt{
		TxID:      "01HZX3J5Y8W6C9D0E1F2G3H4J5",
		TxHash:    "abc123",
		LedgerSeq: 1000,
		ClosedAt:  time.Unix(1700000000, 42).UTC(),
		Account:   "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		Outcome:   domain.Outcome{Status: domain.OutcomeRejected, Code: -38, Message: "Failed to store timestamp"},
		Traces:    []domain.Trace{{Label: "Stored new timestamp: ", Value: -1}},
	}

	decoded, err := Decode(Encode(receipt))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !reflect.DeepEqual(decoded, receipt) {
		t.Fatalf("expected %+v, got %+v", receipt, decoded)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	data := Encode(domain.Receipt{TxID: "tx1", LedgerSeq: 5})
	data = protowire.AppendTag(data, 99, protowire.BytesType)
	data = protowire.AppendString(data, "future")

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if decoded.TxID != "tx1" || decoded.LedgerSeq != 5 {
		t.Fatalf("unexpected receipt %+v", decoded)
	}
}

func TestDecodeRejectsTruncatedData(t *testing.T) {
	data := Encode(domain.Receipt{TxID: "tx-with-a-long-id"})
	if _, err := Decode(data[:len(data)-3]); !errors.Is(err, ErrMalformedReceipt) {
		t.Fatalf("expected ErrMalformedReceipt, got %v", err)
	}
}
