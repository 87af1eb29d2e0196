package memostampsdk

import "errors"

var (
	ErrDataDirRequired  = errors.New("memostamp-sdk: data directory required")
	ErrNotFound         = errors.New("memostamp-sdk: no timestamp recorded")
	ErrClosed           = errors.New("memostamp-sdk: client is closed")
	ErrManifestMismatch = errors.New("memostamp-sdk: config does not match data directory manifest")
)
