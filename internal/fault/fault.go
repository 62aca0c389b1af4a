// Package fault defines the error taxonomy shared by the catalog and
// directory services. Every remote-layer failure is normalized into one of
// these kinds at the service boundary so handlers can switch exhaustively.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindAuthorization marks a capability check failure. The operation
	// aborted with zero side effects.
	KindAuthorization Kind = "authorization"
	// KindValidation marks malformed input, rejected before any I/O.
	KindValidation Kind = "validation"
	// KindConflict is not a failure: the operation needs explicit caller
	// confirmation before it proceeds (duplicate item, profile removal).
	KindConflict Kind = "conflict"
	// KindDecode marks an image payload that could not be decoded.
	KindDecode Kind = "decode"
	// KindRemoteIO marks a failed record-store, object-store or stream
	// call. Completed sub-steps before the failure point are not rolled
	// back.
	KindRemoteIO Kind = "remote_io"
)

type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Conflict builds a confirmation checkpoint. Details carries what the
// caller needs to render the prompt (for example the existing item).
func Conflict(message string, details any) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

func Decode(message string, err error) *Error {
	return &Error{Kind: KindDecode, Message: message, Err: err}
}

func RemoteIO(message string, err error) *Error {
	return &Error{Kind: KindRemoteIO, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from err, or "" when err is not a
// fault error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsConflict reports whether err is a confirmation checkpoint rather
// than a hard failure.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
