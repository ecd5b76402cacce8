package analytics

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumns = errors.New("Invalid file format. Required columns missing.")
	ErrNoSamples      = errors.New("Invalid file format. No metric rows found.")
)

// ParseError means the upload could not be read as a sheet at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError means the sheet was readable but its contents are unusable.
type ValidationError struct {
	Err     error
	Missing []string
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func parseErrorf(format string, args ...interface{}) error {
	return &ParseError{Err: fmt.Errorf(format, args...)}
}
