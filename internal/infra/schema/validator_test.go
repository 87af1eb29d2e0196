package schema

import (
	"context"
	"errors"
	"testing"
)

func TestTransactionValidator(t *testing.T) {
	validator, err := NewTransactionValidator()
	if err != nil {
		t.Fatalf("NewTransactionValidator returned error: %v", err)
	}

	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{
			name:  "payment with memo",
			doc:   `{"TransactionType":"Payment","Account":"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh","Fee":"100000","Memos":[{"Memo":{"MemoType":"Hash","MemoData":"00FF"}}]}`,
			valid: true,
		},
		{name: "missing account", doc: `{"TransactionType":"Payment"}`},
		{name: "bad account", doc: `{"TransactionType":"Payment","Account":"x0"}`},
		{name: "non hex memo", doc: `{"TransactionType":"Payment","Account":"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh","Memos":[{"Memo":{"MemoData":"XYZ"}}]}`},
		{name: "numeric fee", doc: `{"TransactionType":"Payment","Account":"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh","Fee":10}`},
		{name: "not json", doc: `{`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(context.Background(), []byte(tc.doc))
			if tc.valid && err != nil {
				t.Fatalf("expected valid document, got %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestNewJSONSchemaValidatorRejectsBrokenSchema(t *testing.T) {
	if _, err := NewJSONSchemaValidator("broken.json", []byte(`{"type": 12}`)); err == nil {
		t.Fatalf("expected compile error")
	}
}
