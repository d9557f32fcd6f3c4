package domain

import (
	"errors"
	"fmt"
)

// Kind classifies validation and lookup failures so transports can map them
// to responses without string matching.
type Kind int

const (
	// KindType means the wrong primitive type was supplied.
	KindType Kind = iota + 1
	// KindInvalidValue means the right type but outside the allowed set/range.
	KindInvalidValue
	// KindValidation means a structural precondition of a batch operation failed.
	KindValidation
	// KindEmptyResult means an operation expected to produce output produced none.
	KindEmptyResult
	// KindNotFound means a lookup matched nothing. This is an expected,
	// recoverable outcome, not a crash.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindInvalidValue:
		return "invalid_value"
	case KindValidation:
		return "validation"
	case KindEmptyResult:
		return "empty_result"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// KindError carries a Kind alongside the message.
type KindError struct {
	Kind Kind
	Msg  string
}

func (e *KindError) Error() string { return e.Msg }

// Errorf builds a KindError with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &KindError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf walks the error chain and returns the first Kind found, or zero.
func KindOf(err error) Kind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return 0
}

var (
	// ErrCatalogNotFound indicates the question catalog could not be loaded.
	ErrCatalogNotFound = errors.New("question catalog not found")
	// ErrResultNotFound is returned when no assessment result exists for a company.
	ErrResultNotFound = errors.New("assessment result not found")
	// ErrWatchNotFound is returned when a company has no active watch session.
	ErrWatchNotFound = errors.New("watch session not found")
)
