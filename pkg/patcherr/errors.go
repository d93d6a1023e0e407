// Package patcherr defines the failure taxonomy shared by the take
// patching components.
package patcherr

import (
	"errors"
	"fmt"
)

// FormatError reports a malformed container, a missing "data" chunk or
// streams that cannot be combined (e.g. different sample rates).
type FormatError struct {
	Err error
}

func (e FormatError) Error() string { return "format error: " + e.Err.Error() }
func (e FormatError) Unwrap() error { return e.Err }

// AlignmentError reports that the sync marker is absent in a stream.
type AlignmentError struct {
	Err error
}

func (e AlignmentError) Error() string { return "alignment error: " + e.Err.Error() }
func (e AlignmentError) Unwrap() error { return e.Err }

// MatchError reports that no pool recording qualifies for a target.
type MatchError struct {
	Err error
}

func (e MatchError) Error() string { return "match error: " + e.Err.Error() }
func (e MatchError) Unwrap() error { return e.Err }

// IOError reports a file or network access failure.
type IOError struct {
	Err error
}

func (e IOError) Error() string { return "I/O error: " + e.Err.Error() }
func (e IOError) Unwrap() error { return e.Err }

func Format(format string, args ...any) error {
	return FormatError{Err: fmt.Errorf(format, args...)}
}

func Alignment(format string, args ...any) error {
	return AlignmentError{Err: fmt.Errorf(format, args...)}
}

func Match(format string, args ...any) error {
	return MatchError{Err: fmt.Errorf(format, args...)}
}

func IO(format string, args ...any) error {
	return IOError{Err: fmt.Errorf(format, args...)}
}

func IsFormat(err error) bool {
	var target FormatError
	return errors.As(err, &target)
}

func IsAlignment(err error) bool {
	var target AlignmentError
	return errors.As(err, &target)
}

func IsMatch(err error) bool {
	var target MatchError
	return errors.As(err, &target)
}

func IsIO(err error) bool {
	var target IOError
	return errors.As(err, &target)
}
