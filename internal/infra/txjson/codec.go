// Package txjson maps transactions to and from their JSON wire form:
// PascalCase field names, string drop amounts and hex encoded memos
// wrapped in {"Memo": {...}} objects.
package txjson

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

var ErrInvalidMemoData = errors.New("memo data must be hex encoded")

type Validator interface {
	Validate(ctx context.Context, doc []byte) error
}

type wireMemo struct {
	MemoType   string  `json:"MemoType,omitempty"`
	MemoData   *string `json:"MemoData,omitzero"`
	MemoFormat string  `json:"MemoFormat,omitempty"`
}

type wireMemoEntry struct {
	Memo wireMemo `json:"Memo"`
}

type wireTransaction struct {
	TransactionType string          `json:"TransactionType"`
	Account         string          `json:"Account"`
	Destination     string          `json:"Destination,omitempty"`
	Amount          string          `json:"Amount,omitempty"`
	Fee             string          `json:"Fee,omitempty"`
	Sequence        uint32          `json:"Sequence,omitzero"`
	Memos           []wireMemoEntry `json:"Memos,omitempty"`
}

// Codec decodes raw transaction JSON (schema checked first when a
// validator is set) and encodes transactions for hashing and display.
type Codec struct {
	validator Validator
}

func NewCodec(validator Validator) *Codec {
	return &Codec{validator: validator}
}

func (c *Codec) Decode(ctx context.Context, raw []byte) (domain.Transaction, error) {
	if c.validator != nil {
		if err := c.validator.Validate(ctx, raw); err != nil {
			return domain.Transaction{}, err
		}
	}

	var wire wireTransaction
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Transaction{}, fmt.Errorf("decode transaction: %w", err)
	}

	tx := domain.Transaction{
		TxType:      wire.TransactionType,
		Account:     wire.Account,
		Destination: wire.Destination,
		Amount:      wire.Amount,
		Fee:         wire.Fee,
		Sequence:    wire.Sequence,
	}
	for i, entry := range wire.Memos {
		data, err := decodeMemoData(entry.Memo.MemoData)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("%w: memo %d: %v", ErrInvalidMemoData, i, err)
		}
		tx.Memos = append(tx.Memos, domain.Memo{
			Type:   decodeMemoText(entry.Memo.MemoType),
			Data:   data,
			Format: decodeMemoText(entry.Memo.MemoFormat),
		})
	}
	return tx, nil
}

func (c *Codec) Encode(tx domain.Transaction) ([]byte, error) {
	wire := wireTransaction{
		TransactionType: tx.TxType,
		Account:         tx.Account,
		Destination:     tx.Destination,
		Amount:          tx.Amount,
		Fee:             tx.Fee,
		Sequence:        tx.Sequence,
	}
	for _, memo := range tx.Memos {
		wire.Memos = append(wire.Memos, wireMemoEntry{Memo: wireMemo{
			MemoType:   encodeHex(memo.Type),
			MemoData:   encodeMemoData(memo.Data),
			MemoFormat: encodeHex(memo.Format),
		}})
	}

	out, err := json.Marshal(wire, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	return out, nil
}

// decodeMemoData keeps an explicit "" as present but empty, so the hook
// sees a zero length memo instead of a missing one.
func decodeMemoData(value *string) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	data, err := hex.DecodeString(*value)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func encodeMemoData(data []byte) *string {
	if data == nil {
		return nil
	}
	value := encodeHex(data)
	return &value
}

// decodeMemoText accepts memo type and format either hex encoded or as
// plain text ("Hash").
func decodeMemoText(value string) []byte {
	if value == "" {
		return nil
	}
	if decoded, err := hex.DecodeString(value); err == nil {
		return decoded
	}
	return []byte(value)
}

func encodeHex(value []byte) string {
	return strings.ToUpper(hex.EncodeToString(value))
}
