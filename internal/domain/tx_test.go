package domain

import (
	"bytes"
	"errors"
	"testing"
)

const testAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want error
	}{
		{name: "valid", tx: Transaction{TxType: TxTypePayment, Account: testAccount}},
		{name: "missing type", tx: Transaction{Account: testAccount}, want: ErrTxTypeRequired},
		{name: "missing account", tx: Transaction{TxType: TxTypePayment, Account: " "}, want: ErrAccountRequired},
		{name: "bad account", tx: Transaction{TxType: TxTypePayment, Account: "xHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"}, want: ErrInvalidAccount},
		{name: "bad destination", tx: Transaction{TxType: TxTypePayment, Account: testAccount, Destination: "r0OIl"}, want: ErrInvalidAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tx.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTransactionFieldUsesFirstMemoWithData(t *testing.T) {
	tx := Transaction{
		TxType:  TxTypePayment,
		Account: testAccount,
		Memos: []Memo{
			{Type: []byte("note")},
			{Data: []byte{1, 2, 3}},
			{Data: []byte{4}},
		},
	}

	got, err := tx.Field(FieldMemoData)
	if err != nil {
		t.Fatalf("Field returned error: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("unexpected memo data %x", got)
	}
	if _, err := tx.Field(FieldMemoFormat); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestTransactionFieldEmptyMemoDataIsPresent(t *testing.T) {
	tx := Transaction{
		TxType:  TxTypePayment,
		Account: testAccount,
		Memos: []Memo{
			{Data: []byte{}},
			{Data: []byte{1, 2, 3}},
		},
	}

	got, err := tx.Field(FieldMemoData)
	if err != nil {
		t.Fatalf("Field returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected present empty memo data, got %x", got)
	}
}

func TestTransactionFieldWithoutMemos(t *testing.T) {
	tx := Transaction{TxType: TxTypePayment, Account: testAccount}
	if _, err := tx.Field(FieldMemoData); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	account, err := tx.Field(FieldAccount)
	if err != nil || string(account) != testAccount {
		t.Fatalf("expected account field, got %q (%v)", account, err)
	}
}
