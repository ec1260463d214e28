package decoder

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchFailure is matched by every SearchFailure.
	ErrSearchFailure = errors.New("search failure")
	// ErrBudgetExhausted marks a search aborted by its expansion or time budget.
	ErrBudgetExhausted = errors.New("search budget exhausted")
)

// SearchFailure reports that no complete derivation was found for a sentence.
type SearchFailure struct {
	Source string
	Reason string
	Err    error
}

func (e *SearchFailure) Error() string {
	msg := fmt.Sprintf("no translation for %q: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SearchFailure) Is(target error) bool {
	return target == ErrSearchFailure
}

func (e *SearchFailure) Unwrap() error {
	return e.Err
}
