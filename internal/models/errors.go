package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is returned when lat or lon is absent from a search.
	ErrMissingParameter = errors.New("missing required parameters: lat and lon")
	// ErrInvalidParameter is returned when a search parameter is not a usable number.
	ErrInvalidParameter = errors.New("invalid search parameter")
)

// SearchFailedError reports a transport or backend failure during a search.
type SearchFailedError struct {
	Err error
}

func (e *SearchFailedError) Error() string {
	return fmt.Sprintf("search failed: %v", e.Err)
}

func (e *SearchFailedError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying backend message without the search-failed prefix.
func (e *SearchFailedError) Cause() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
