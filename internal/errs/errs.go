package errs

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies an error for the HTTP layer. Callers map kinds to status codes.
type Kind string

const (
	KindInvalidType              Kind = "InvalidType"
	KindInvalidDescription       Kind = "InvalidDescription"
	KindInvalidStatus            Kind = "InvalidStatus"
	KindMissingID                Kind = "MissingId"
	KindMissingStatus            Kind = "MissingStatus"
	KindNotFound                 Kind = "NotFound"
	KindSummarizationFailed      Kind = "SummarizationFailed"
	KindSummarizationUnavailable Kind = "SummarizationUnavailable"
	KindConflict                 Kind = "Conflict"
	KindInternal                 Kind = "Internal"
)

// Error carries a kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrInvalidType              = &Error{Kind: KindInvalidType, Message: "invalid type"}
	ErrInvalidDescription       = &Error{Kind: KindInvalidDescription, Message: "invalid description"}
	ErrInvalidStatus            = &Error{Kind: KindInvalidStatus, Message: "invalid status"}
	ErrMissingID                = &Error{Kind: KindMissingID, Message: "Incident ID is required"}
	ErrMissingStatus            = &Error{Kind: KindMissingStatus, Message: "Status is required"}
	ErrNotFound                 = &Error{Kind: KindNotFound, Message: "Incident not found"}
	ErrSummarizationFailed      = &Error{Kind: KindSummarizationFailed, Message: "Failed to summarize incident"}
	ErrSummarizationUnavailable = &Error{Kind: KindSummarizationUnavailable, Message: "summarization unavailable"}
	ErrConflict                 = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInternal                 = &Error{Kind: KindInternal, Message: "internal error"}
)

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a caller-input error.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindInvalidType, KindInvalidDescription, KindInvalidStatus, KindMissingID, KindMissingStatus:
		return true
	}
	return false
}

// Message returns the caller-facing message of err, or fallback for unclassified errors.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return fallback
}

// FromDB maps a storage error to the taxonomy.
func FromDB(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return Wrap(KindInternal, op, err)
}
