// Package vmerrors defines the interpreter's failure taxonomy. Every runtime
// error is wrapped in a VMError carrying the failing commit's identity, so
// the top-level CLI can print a single "<commit>: <kind>: <message>"
// diagnostic line regardless of where in the engine the error originated.
package vmerrors

import (
	"errors"
	"fmt"
)

// Kind names one of the fixed failure categories produced by the language
// and its surrounding engine.
type Kind string

const (
	ParseError           Kind = "ParseError"
	UndefinedSymbol      Kind = "UndefinedSymbol"
	NotATable            Kind = "NotATable"
	TypeMismatch         Kind = "TypeMismatch"
	ArithmeticError      Kind = "ArithmeticError"
	BranchTargetNotFound Kind = "BranchTargetNotFound"
	NoSuccessor          Kind = "NoSuccessor"
	RedirectLoop         Kind = "RedirectLoop"
	IoError              Kind = "IoError"
	MissingRef           Kind = "MissingRef"
)

// VMError is a runtime error tagged with its Kind and, when known, the
// commit identity executing at the time of failure.
type VMError struct {
	Kind   Kind
	Commit string // empty for startup errors that precede a cursor
	Err    error
}

func (e *VMError) Error() string {
	if e.Commit == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Commit, e.Kind, e.Err)
}

func (e *VMError) Unwrap() error { return e.Err }

// New builds a startup-time VMError (no commit context yet).
func New(kind Kind, format string, args ...any) *VMError {
	return &VMError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// At builds a runtime VMError scoped to the commit currently executing.
func At(commit string, kind Kind, format string, args ...any) *VMError {
	return &VMError{Commit: commit, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches commit context to an existing error without discarding its
// Kind, if it is a VMError without commit context yet; otherwise err is
// returned as is.
func Wrap(commit string, err error) error {
	if err == nil {
		return nil
	}
	var ve *VMError
	if errors.As(err, &ve) && ve.Commit == "" {
		wrapped := *ve
		wrapped.Commit = commit
		return &wrapped
	}
	return err
}

// Is reports whether err is a VMError of the given kind.
func Is(err error, kind Kind) bool {
	var ve *VMError
	return errors.As(err, &ve) && ve.Kind == kind
}
