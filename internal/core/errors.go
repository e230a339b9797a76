package core

import (
	"errors"
	"fmt"
)

// Usage errors. These indicate a malformed test, never a legitimate mismatch, so the
// engine returns them instead of reporting a non-match.
var (
	ErrUnsupportedKind = errors.New("unsupported kind")
	ErrNotFunction     = errors.New("matcher is not a function")
	ErrPredicateArity  = errors.New("predicate must take exactly one argument")
	ErrPredicateResult = errors.New("predicate must return exactly one bool")
)

// UsageError reports a programmer error in a matcher definition.
type UsageError struct {
	Err    error
	Detail string
}

func (e *UsageError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}

	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(err error, format string, args ...any) *UsageError {
	return &UsageError{Err: err, Detail: fmt.Sprintf(format, args...)}
}
