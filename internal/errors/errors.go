package errors

import (
	"errors"
	"fmt"
)

// Kind classifies extraction failures
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindMalformedTimestamp Kind = "malformed_timestamp"
	KindMalformedScore     Kind = "malformed_score"
	KindIOFailure          Kind = "io_failure"
	KindValidation         Kind = "validation"
)

// StatsError is the error type returned by every stage of the extraction pipeline.
// Path is the directory or file the failure relates to.
type StatsError struct {
	Kind    Kind   `json:"kind"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *StatsError) Error() string {
	if e == nil {
		return "unknown stats error"
	}
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Kind, e.Path, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *StatsError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *StatsError by kind, so sentinel comparisons like
// errors.Is(err, ErrNotFound) work on wrapped errors.
func (e *StatsError) Is(target error) bool {
	var t *StatsError
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Kind == t.Kind && t.Path == "" && t.Cause == nil
}

// Sentinels for errors.Is checks
var (
	ErrNotFound           = &StatsError{Kind: KindNotFound, Message: "not found"}
	ErrMalformedTimestamp = &StatsError{Kind: KindMalformedTimestamp, Message: "malformed timestamp"}
	ErrMalformedScore     = &StatsError{Kind: KindMalformedScore, Message: "malformed score"}
	ErrIOFailure          = &StatsError{Kind: KindIOFailure, Message: "i/o failure"}
	ErrValidation         = &StatsError{Kind: KindValidation, Message: "validation failed"}
)

// NotFound reports a missing or unreadable stats directory.
func NotFound(path string, cause error) *StatsError {
	return &StatsError{Kind: KindNotFound, Path: path, Message: "stats directory not accessible", Cause: cause}
}

// MalformedTimestamp reports a date/time string that does not match the record format.
func MalformedTimestamp(path, value string, cause error) *StatsError {
	return &StatsError{
		Kind:    KindMalformedTimestamp,
		Path:    path,
		Message: fmt.Sprintf("cannot parse timestamp %q", value),
		Cause:   cause,
	}
}

// MalformedScore reports a Score: row whose value is not a finite number.
func MalformedScore(path, value string, cause error) *StatsError {
	return &StatsError{
		Kind:    KindMalformedScore,
		Path:    path,
		Message: fmt.Sprintf("cannot parse score %q", value),
		Cause:   cause,
	}
}

// IOFailure reports a file that could not be opened or read.
func IOFailure(path string, cause error) *StatsError {
	return &StatsError{Kind: KindIOFailure, Path: path, Message: "cannot read file", Cause: cause}
}

// Validation reports bad caller input.
func Validation(message string) *StatsError {
	return &StatsError{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of err, or "" if err carries no StatsError.
func KindOf(err error) Kind {
	var se *StatsError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err carries a StatsError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// WithPath returns a copy of err with Path set when err is a StatsError without one.
func WithPath(err error, path string) error {
	var se *StatsError
	if !errors.As(err, &se) || se.Path != "" {
		return err
	}
	cp := *se
	cp.Path = path
	return &cp
}
