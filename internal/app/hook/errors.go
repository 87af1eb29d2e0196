package hook

import "errors"

const (
	CodeMemoMissing   int64 = 10
	CodeMemoMalformed int64 = 20
)

const (
	MsgMemoMissing     = "Transaction must contain a memo field."
	MsgMemoMalformed   = "Transaction must contain a 32-byte hashed memo."
	MsgStoreFailed     = "Failed to store timestamp"
	MsgReadFailed      = "Failed to read timestamp"
	MsgTimestampFound  = "Timestamp found"
	MsgTimestampStored = "New timestamp stored"
)

const (
	TraceExisting = "Existing timestamp: "
	TraceStored   = "Stored new timestamp: "
)

var ErrMemoMissing = errors.New("memo field missing")
var ErrMemoMalformed = errors.New("memo is not a 32-byte hash")
var ErrStoreFailed = errors.New("timestamp write failed")
var ErrReadFailed = errors.New("timestamp read failed")
