package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyResult is matched by every EmptyResultError.
	ErrEmptyResult = errors.New("no matching attendance records")
	// ErrNotFound is returned when an update names an id that does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a required field that was empty or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// EmptyResultError is returned when a report or export matches no records.
type EmptyResultError struct {
	Filter ReportFilter
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s (from %q to %q, section %q)",
		ErrEmptyResult, e.Filter.From, e.Filter.To, e.Filter.sectionOrAll())
}

// Is lets errors.Is(err, ErrEmptyResult) match.
func (e *EmptyResultError) Is(target error) bool {
	return target == ErrEmptyResult
}
