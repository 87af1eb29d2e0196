package httpapi

import (
	"time"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const (
	resultSuccess      = "tesSUCCESS"
	resultHookRejected = "tecHOOK_REJECTED"
)

type TraceView struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type ReceiptView struct {
	TxID              string      `json:"tx_id"`
	TxHash            string      `json:"tx_hash"`
	LedgerIndex       int64       `json:"ledger_index"`
	ClosedAt          string      `json:"closed_at,omitempty"`
	Account           string      `json:"account"`
	MemoHash          string      `json:"memo_hash,omitempty"`
	Status            string      `json:"status"`
	TransactionResult string      `json:"transactionResult"`
	Result            int64       `json:"result"`
	ResultMessage     string      `json:"resultMessage"`
	Traces            []TraceView `json:"traces,omitempty"`
}

type LedgerView struct {
	Sequence     int64  `json:"sequence"`
	ClosedAt     string `json:"closed_at,omitempty"`
	StateEntries int64  `json:"state_entries"`
}

type StampView struct {
	Hash      string `json:"hash"`
	Found     bool   `json:"found"`
	Timestamp int64  `json:"timestamp,omitzero"`
}

func NewReceiptView(r domain.Receipt) ReceiptView {
	view := ReceiptView{
		TxID:              r.TxID,
		TxHash:            r.TxHash,
		LedgerIndex:       r.LedgerSeq,
		ClosedAt:          formatTime(r.ClosedAt),
		Account:           r.Account,
		MemoHash:          r.MemoHash,
		Status:            r.Outcome.Status.String(),
		TransactionResult: transactionResult(r.Outcome),
		Result:            r.Outcome.Code,
		ResultMessage:     r.Outcome.Message,
	}
	for _, trace := range r.Traces {
		view.Traces = append(view.Traces, TraceView{Label: trace.Label, Value: trace.Value})
	}
	return view
}

func NewLedgerView(info domain.LedgerInfo) LedgerView {
	return LedgerView{
		Sequence:     info.Sequence,
		ClosedAt:     formatTime(info.ClosedAt),
		StateEntries: info.StateEntries,
	}
}

func transactionResult(outcome domain.Outcome) string {
	if outcome.Accepted() {
		return resultSuccess
	}
	return resultHookRejected
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
