// Package receiptpb encodes ledger receipts in protobuf wire format. The
// message layout is fixed by the field numbers below; unknown fields are
// skipped on decode so older readers accept newer receipts.
package receiptpb

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const (
	fieldTxID      protowire.Number = 1
	fieldTxHash    protowire.Number = 2
	fieldLedgerSeq protowire.Number = 3
	fieldClosedAt  protowire.Number = 4
	fieldAccount   protowire.Number = 5
	fieldMemoHash  protowire.Number = 6
	fieldStatus    protowire.Number = 7
	fieldCode      protowire.Number = 8
	fieldMessage   protowire.Number = 9
	fieldTrace     protowire.Number = 10
)

const (
	fieldTraceLabel protowire.Number = 1
	fieldTraceValue protowire.Number = 2
)

var ErrMalformedReceipt = errors.New("malformed receipt")

type Codec struct{}

func (Codec) Encode(receipt domain.Receipt) ([]byte, error) {
	return Encode(receipt), nil
}

func (Codec) Decode(data []byte) (domain.Receipt, error) {
	return Decode(data)
}

func Encode(r domain.Receipt) []byte {
	var b []byte
	b = appendString(b, fieldTxID, r.TxID)
	b = appendString(b, fieldTxHash, r.TxHash)
	b = appendVarint(b, fieldLedgerSeq, uint64(r.LedgerSeq))
	if !r.ClosedAt.IsZero() {
		b = appendVarint(b, fieldClosedAt, uint64(r.ClosedAt.UnixNano()))
	}
	b = appendString(b, fieldAccount, r.Account)
	b = appendString(b, fieldMemoHash, r.MemoHash)
	b = appendVarint(b, fieldStatus, uint64(r.Outcome.Status))
	if r.Outcome.Code != 0 {
		b = protowire.AppendTag(b, fieldCode, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(r.Outcome.Code))
	}
	b = appendString(b, fieldMessage, r.Outcome.Message)
	for _, trace := range r.Traces {
		var tb []byte
		tb = appendString(tb, fieldTraceLabel, trace.Label)
		tb = protowire.AppendTag(tb, fieldTraceValue, protowire.VarintType)
		tb = protowire.AppendVarint(tb, protowire.EncodeZigZag(trace.Value))
		b = protowire.AppendTag(b, fieldTrace, protowire.BytesType)
		b = protowire.AppendBytes(b, tb)
	}
	return b
}

func Decode(data []byte) (domain.Receipt, error) {
	var r domain.Receipt
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.Receipt{}, malformed(protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case typ == protowire.BytesType && isStringField(num):
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return domain.Receipt{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
			setString(&r, num, v)
		case typ == protowire.VarintType && isVarintField(num):
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return domain.Receipt{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
			switch num {
			case fieldLedgerSeq:
				r.LedgerSeq = int64(v)
			case fieldClosedAt:
				r.ClosedAt = time.Unix(0, int64(v)).UTC()
			case fieldStatus:
				r.Outcome.Status = domain.OutcomeStatus(v)
			case fieldCode:
				r.Outcome.Code = protowire.DecodeZigZag(v)
			}
		case typ == protowire.BytesType && num == fieldTrace:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return domain.Receipt{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
			trace, err := decodeTrace(v)
			if err != nil {
				return domain.Receipt{}, err
			}
			r.Traces = append(r.Traces, trace)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return domain.Receipt{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return r, nil
}

func decodeTrace(data []byte) (domain.Trace, error) {
	var trace domain.Trace
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.Trace{}, malformed(protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldTraceLabel && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return domain.Trace{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
			trace.Label = v
		case num == fieldTraceValue && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return domain.Trace{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
			trace.Value = protowire.DecodeZigZag(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return domain.Trace{}, malformed(protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return trace, nil
}

func isStringField(num protowire.Number) bool {
	switch num {
	case fieldTxID, fieldTxHash, fieldAccount, fieldMemoHash, fieldMessage:
		return true
	}
	return false
}

func isVarintField(num protowire.Number) bool {
	switch num {
	case fieldLedgerSeq, fieldClosedAt, fieldStatus, fieldCode:
		return true
	}
	return false
}

func setString(r *domain.Receipt, num protowire.Number, v string) {
	switch num {
	case fieldTxID:
		r.TxID = v
	case fieldTxHash:
		r.TxHash = v
	case fieldAccount:
		r.Account = v
	case fieldMemoHash:
		r.MemoHash = v
	case fieldMessage:
		r.Outcome.Message = v
	}
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedReceipt, err)
}
