package certify

import "errors"

var ErrAccountNotConfigured = errors.New("stamping account is not configured")
