// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Commands return these so Execute can pick an exit message without parsing
// error strings.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// NotSignedIn indicates a command that needs a session ran without one.
	NotSignedIn Kind = "not_signed_in"
	// SessionExpired indicates the API rejected the stored credential.
	SessionExpired Kind = "session_expired"
	// StatementsFailed indicates a strict schema run had rejected statements.
	StatementsFailed Kind = "statements_failed"
	// InvalidInput indicates a bad flag, argument or input file.
	InvalidInput Kind = "invalid_input"
	// Unavailable indicates the API or database could not be reached.
	Unavailable Kind = "unavailable"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "".
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
