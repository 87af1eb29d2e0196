package domain

import (
	"errors"
	"strings"
)

const TxTypePayment = "Payment"

var (
	ErrTxTypeRequired  = errors.New("transaction type is required")
	ErrAccountRequired = errors.New("account is required")
	ErrInvalidAccount  = errors.New("invalid account address")
)

// Memo fields are nil when the memo does not carry them. An empty non-nil
// slice is a field that is present with zero length.
type Memo struct {
	Type   []byte
	Data   []byte
	Format []byte
}

type Transaction struct {
	TxType      string
	Account     string
	Destination string
	Amount      string
	Fee         string
	Sequence    uint32
	Memos       []Memo
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.TxType) == "" {
		return ErrTxTypeRequired
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrAccountRequired
	}
	if !IsValidAccount(t.Account) {
		return ErrInvalidAccount
	}
	if t.Destination != "" && !IsValidAccount(t.Destination) {
		return ErrInvalidAccount
	}
	return nil
}

// Field returns the raw bytes of a transaction field. Memo fields resolve
// against the first memo that carries them.
func (t Transaction) Field(code FieldCode) ([]byte, error) {
	switch code {
	case FieldAccount:
		return nonEmpty([]byte(t.Account))
	case FieldDestination:
		return nonEmpty([]byte(t.Destination))
	case FieldMemoType, FieldMemoData, FieldMemoFormat:
		for _, memo := range t.Memos {
			var value []byte
			switch code {
			case FieldMemoType:
				value = memo.Type
			case FieldMemoData:
				value = memo.Data
			default:
				value = memo.Format
			}
			if value != nil {
				return value, nil
			}
		}
		return nil, ErrFieldNotFound
	default:
		return nil, ErrFieldNotFound
	}
}

func nonEmpty(value []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, ErrFieldNotFound
	}
	return value, nil
}
