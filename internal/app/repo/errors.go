package repo

import "errors"

var ErrAlreadyInitialized = errors.New("data directory already initialized")
var ErrInvalidGenesisSeq = errors.New("genesis sequence must not be negative")
var ErrInvalidMaxEntries = errors.New("max state entries must not be negative")
var ErrWALRequiresSQLite = errors.New("write-ahead logging needs the sqlite backend")
