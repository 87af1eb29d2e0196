package domain

import "time"

type Trace struct {
	Label string
	Value int64
}

// Receipt records what happened to one submitted transaction. Rejected
// transactions still get a receipt and consume a ledger sequence.
type Receipt struct {
	TxID      string
	TxHash    string
	LedgerSeq int64
	ClosedAt  time.Time
	Account   string
	MemoHash  string
	Outcome   Outcome
	Traces    []Trace
}

type ReceiptQuery struct {
	Limit    int
	MemoHash string
	Status   OutcomeStatus
}

type LedgerInfo struct {
	Sequence     int64
	ClosedAt     time.Time
	StateEntries int64
}
