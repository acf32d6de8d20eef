package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a search rejected before any store was queried
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	// ErrEmptyQuery is returned when the search text is blank
	ErrEmptyQuery = &ValidationError{Reason: "search query is required"}

	// ErrNoSourceSelected is returned when the selection enables no known store
	ErrNoSourceSelected = &ValidationError{Reason: "no store selected"}

	// ErrNoResults is returned when the stores answered but no offer survived filtering
	ErrNoResults = errors.New("no products found in the selected stores")
)

// SourceError records why one store could not be searched
type SourceError struct {
	Store string
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Store, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// AllSourcesFailedError is returned when every selected store failed.
// Messages holds one "Store: reason" entry per store, in dispatch order.
type AllSourcesFailedError struct {
	Messages []string
}

func (e *AllSourcesFailedError) Error() string {
	return strings.Join(e.Messages, " | ")
}
