package domain

import (
	"errors"
	"fmt"
)

// HostStatus is the negative status a hook host API returns on failure.
type HostStatus int64

const (
	StatusSuccess             HostStatus = 0
	StatusOutOfBounds         HostStatus = -1
	StatusInternalError       HostStatus = -2
	StatusTooBig              HostStatus = -3
	StatusTooSmall            HostStatus = -4
	StatusDoesntExist         HostStatus = -5
	StatusNoFreeSlots         HostStatus = -6
	StatusInvalidArgument     HostStatus = -7
	StatusReserveInsufficient HostStatus = -38
)

func (s HostStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusOutOfBounds:
		return "OUT_OF_BOUNDS"
	case StatusInternalError:
		return "INTERNAL_ERROR"
	case StatusTooBig:
		return "TOO_BIG"
	case StatusTooSmall:
		return "TOO_SMALL"
	case StatusDoesntExist:
		return "DOESNT_EXIST"
	case StatusNoFreeSlots:
		return "NO_FREE_SLOTS"
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusReserveInsufficient:
		return "RESERVE_INSUFFICIENT"
	default:
		return fmt.Sprintf("STATUS(%d)", int64(s))
	}
}

type StatusError struct {
	Status HostStatus
	Op     string
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusOf extracts the host status carried by err. Errors without one map
// to INTERNAL_ERROR so that callers always see a negative code.
func StatusOf(err error) HostStatus {
	if err == nil {
		return StatusSuccess
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status < 0 {
		return statusErr.Status
	}
	return StatusInternalError
}
