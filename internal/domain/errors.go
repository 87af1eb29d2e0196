package domain

import "errors"

var ErrLedgerChanged = errors.New("ledger head changed")
var ErrStateNotFound = errors.New("state entry not found")
var ErrFieldNotFound = errors.New("transaction field not found")
