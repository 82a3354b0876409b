package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so callers can decide between retry
// and a user-facing message.
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindAllocationConflict ErrorKind = "ALLOCATION_CONFLICT"
	KindAggregateRecalc    ErrorKind = "AGGREGATE_RECALC_FAILURE"
	KindReferentialBlock   ErrorKind = "REFERENTIAL_BLOCK"
	KindAuditWrite         ErrorKind = "AUDIT_WRITE_FAILURE"
	KindTimeout            ErrorKind = "TIMEOUT"
	KindStore              ErrorKind = "STORE_FAILURE"
)

// Error is the structured error returned by every engine operation.
type Error struct {
	Kind       ErrorKind  `json:"kind"`
	Message    string     `json:"message"`
	EntityType EntityType `json:"entity_type,omitempty"`
	EntityID   string     `json:"entity_id,omitempty"`
	Blockers   int        `json:"blockers,omitempty"`
	Cause      error      `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Retryable reports whether repeating the whole operation may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindAllocationConflict, KindAggregateRecalc, KindTimeout:
		return true
	}
	return false
}

// Sentinels for errors.Is
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAllocationConflict = &Error{Kind: KindAllocationConflict}
	ErrAggregateRecalc    = &Error{Kind: KindAggregateRecalc}
	ErrReferentialBlock   = &Error{Kind: KindReferentialBlock}
	ErrAuditWrite         = &Error{Kind: KindAuditWrite}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrStore              = &Error{Kind: KindStore}
)

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(entityType EntityType, id string) *Error {
	return &Error{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("%s %s not found", entityType, id),
		EntityType: entityType,
		EntityID:   id,
	}
}

func NewAllocationConflict(entityType EntityType, cause error) *Error {
	return &Error{
		Kind:       KindAllocationConflict,
		Message:    fmt.Sprintf("could not allocate %s sequence number", entityType),
		EntityType: entityType,
		Cause:      cause,
	}
}

func NewAggregateRecalcFailure(dep string, parentID string, cause error) *Error {
	return &Error{
		Kind:     KindAggregateRecalc,
		Message:  fmt.Sprintf("recalculating %s failed", dep),
		EntityID: parentID,
		Cause:    cause,
	}
}

// NewReferentialBlock reports a delete rejected because count records still
// reference the target.
func NewReferentialBlock(entityType EntityType, id string, count int) *Error {
	return &Error{
		Kind:       KindReferentialBlock,
		Message:    fmt.Sprintf("%s %s is referenced by %d record(s)", entityType, id, count),
		EntityType: entityType,
		EntityID:   id,
		Blockers:   count,
	}
}

func NewAuditWriteFailure(entityType EntityType, id string, cause error) *Error {
	return &Error{
		Kind:       KindAuditWrite,
		Message:    "audit write rejected",
		EntityType: entityType,
		EntityID:   id,
		Cause:      cause,
	}
}

func NewTimeoutError(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: "operation timed out", Cause: cause}
}

func NewStoreFailure(message string, cause error) *Error {
	return &Error{Kind: KindStore, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether err carries a retryable engine error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}
