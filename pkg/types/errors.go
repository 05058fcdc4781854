// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a conversion failed. Each kind maps to a
// distinct cause reported to the caller.
type ErrorKind string

const (
	ErrInputNotFound      ErrorKind = "input_not_found"
	ErrBackendUnavailable ErrorKind = "backend_unavailable"
	ErrProcessTimeout     ErrorKind = "external_process_timeout"
	ErrProcessNonZeroExit ErrorKind = "external_process_nonzero_exit"
	ErrOutputMissing      ErrorKind = "output_file_missing"
	ErrUnexpected         ErrorKind = "unexpected"
)

// ConversionError carries an ErrorKind alongside the underlying cause.
type ConversionError struct {
	Kind ErrorKind
	// Op names the step that failed (e.g. "locate libreoffice").
	Op  string
	Err error
}

// NewError wraps err with kind and op. A nil err is allowed when the
// message in op is sufficient.
func NewError(kind ErrorKind, op string, err error) *ConversionError {
	return &ConversionError{Kind: kind, Op: op, Err: err}
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, or ErrUnexpected when err
// is not a ConversionError. A nil error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrUnexpected
}
