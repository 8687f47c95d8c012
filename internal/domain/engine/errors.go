package engine

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an expected, caller-recoverable rejection.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindPrecondition
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition_failed"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

const (
	ReasonInJail     = "in jail"
	ReasonInHospital = "in hospital"
)

// Error is the only error type the engine returns. Reason is shown to the
// player as is. Remaining is set when the rejection is a running timer.
type Error struct {
	Kind      Kind
	Reason    string
	Remaining time.Duration
}

func (e *Error) Error() string {
	if e.Remaining > 0 {
		return fmt.Sprintf("%s: %s (%s remaining)", e.Kind, e.Reason, e.Remaining.Round(time.Second))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func Precondition(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Reason: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// Waiting is a precondition failure caused by a timer that has not expired yet.
func Waiting(reason string, remaining time.Duration) *Error {
	return &Error{Kind: KindPrecondition, Reason: reason, Remaining: remaining}
}

// KindOf reports the kind of an engine error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
