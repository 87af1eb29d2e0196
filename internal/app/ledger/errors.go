package ledger

import "errors"

var ErrPayloadRequired = errors.New("transaction payload is required")
var ErrInvalidLimit = errors.New("receipt limit must be positive")
