package feed

import (
	"errors"
	"fmt"

	"github.com/feedwise/feedwise/pkg/types"
)

// ErrTooManyFailures terminates a run once the consecutive-error threshold is
// reached, so the loop never spins against a broken session.
var ErrTooManyFailures = errors.New("too many consecutive item failures")

// ExtractionError is a recoverable failure reading rendered items from the
// page. The loop responds by scrolling and re-extracting.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ActionError is a recoverable failure applying a decision to an item: a
// control was missing, hidden, or the click failed. The item is logged and
// skipped; the loop advances.
type ActionError struct {
	Action types.Action
	Reason string
	Cause  error
}

func (e *ActionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("action %s failed: %s: %v", e.Action, e.Reason, e.Cause)
	}
	return fmt.Sprintf("action %s failed: %s", e.Action, e.Reason)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// SessionError is fatal: the browser session or login is gone and continuing
// would only corrupt remote state. The run terminates cleanly.
type SessionError struct {
	Cause error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session lost: %v", e.Cause)
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether err must terminate the run.
func IsFatal(err error) bool {
	var sessionErr *SessionError
	return errors.As(err, &sessionErr)
}
