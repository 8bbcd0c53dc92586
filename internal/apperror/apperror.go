// Package apperror defines the error kinds shared by the lifecycle core,
// the repositories and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// NotLegal indicates an event that violates a legality invariant.
	NotLegal Kind = "NOT_LEGAL"
	// Full indicates that the ledger already holds participantsMax entries.
	Full Kind = "FULL"
	// AlreadyRegistered indicates a duplicate ledger entry.
	AlreadyRegistered Kind = "ALREADY_REGISTERED"
	// NotEligible indicates a participant rejected by the event type schema.
	NotEligible Kind = "NOT_ELIGIBLE"
	// Empty indicates a deregistration against an empty ledger.
	Empty Kind = "EMPTY"
	// NotRegistered indicates a deregistration of an absent participant.
	NotRegistered Kind = "NOT_REGISTERED"
	// DeadlinePassed indicates a request after the relevant deadline.
	DeadlinePassed Kind = "DEADLINE_PASSED"
	// NotOpen indicates a registration against an event that does not accept them.
	NotOpen Kind = "NOT_OPEN"
	// InvalidState indicates an explicit transition from a state that does not allow it.
	InvalidState Kind = "INVALID_STATE"
	// InvalidInput indicates malformed form values.
	InvalidInput Kind = "INVALID_INPUT"
	// NotFound indicates a missing event or user.
	NotFound Kind = "NOT_FOUND"
	// UnknownCost indicates a cost id that is not part of the event. Caller defect.
	UnknownCost Kind = "UNKNOWN_COST"
	// StorageUnavailable indicates a repository failure.
	StorageUnavailable Kind = "STORAGE_UNAVAILABLE"
)

// Sentinels for errors.Is comparisons. Matching is by kind only.
var (
	ErrNotLegal           = New(NotLegal, "event is not legal")
	ErrFull               = New(Full, "event is full")
	ErrAlreadyRegistered  = New(AlreadyRegistered, "participant already registered")
	ErrNotEligible        = New(NotEligible, "participant is not eligible")
	ErrEmpty              = New(Empty, "no participants registered")
	ErrNotRegistered      = New(NotRegistered, "participant not registered")
	ErrDeadlinePassed     = New(DeadlinePassed, "deadline has passed")
	ErrNotOpen            = New(NotOpen, "event is not open for registration")
	ErrInvalidState       = New(InvalidState, "transition not allowed from current state")
	ErrInvalidInput       = New(InvalidInput, "invalid input")
	ErrNotFound           = New(NotFound, "not found")
	ErrUnknownCost        = New(UnknownCost, "unknown optional cost")
	ErrStorageUnavailable = New(StorageUnavailable, "storage unavailable")
)

// Error is a categorized error with optional metadata and cause.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithMetadata creates an error carrying key/value context, e.g. the
// violated rule or the offending field.
func WithMetadata(kind Kind, message string, metadata map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Metadata: metadata}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsFatal reports whether err is a defect or collaborator failure rather
// than a business-rule rejection the actor can fix.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case UnknownCost, StorageUnavailable, "":
		return err != nil
	}
	return false
}
