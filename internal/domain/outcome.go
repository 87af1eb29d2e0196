package domain

import "fmt"

type OutcomeStatus int

const (
	OutcomeUnknown OutcomeStatus = iota
	OutcomeAccepted
	OutcomeRejected
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func ParseOutcomeStatus(value string) (OutcomeStatus, error) {
	switch value {
	case "accepted":
		return OutcomeAccepted, nil
	case "rejected":
		return OutcomeRejected, nil
	default:
		return OutcomeUnknown, fmt.Errorf("invalid outcome status: %s", value)
	}
}

// Outcome is the terminal result of one hook invocation. Code is the result
// value for accepted outcomes and the cause code for rejected ones.
type Outcome struct {
	Status  OutcomeStatus
	Code    int64
	Message string
}

func Accept(message string, result int64) Outcome {
	return Outcome{Status: OutcomeAccepted, Code: result, Message: message}
}

func Rollback(message string, cause int64) Outcome {
	return Outcome{Status: OutcomeRejected, Code: cause, Message: message}
}

func (o Outcome) Accepted() bool {
	return o.Status == OutcomeAccepted
}

type RejectionError struct {
	Code    int64
	Message string
	Err     error
}

func (e *RejectionError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("rejected (%d): %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("rejected (%d): %s", e.Code, e.Message)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}
