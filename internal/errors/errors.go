// SPDX-License-Identifier: AGPL-3.0-only

// Package errors defines the fault taxonomy used by the agent. The kind of a
// fault decides its propagation: invocation faults are folded back into the
// conversation as data, everything else aborts the current query.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a fault
type Kind string

// Fault kinds
const (
	// KindConnection covers session or channel establishment failures
	KindConnection Kind = "connection"
	// KindPrecondition covers operations attempted before the session is ready
	KindPrecondition Kind = "precondition"
	// KindInvocation covers failures of a single tool call
	KindInvocation Kind = "invocation"
	// KindModel covers failures of the model invocation itself
	KindModel Kind = "model"
	// KindLoopBound is raised when the tool loop exceeds its iteration cap
	KindLoopBound Kind = "loop_bound"
)

// Error is a classified fault
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Connection creates a connection fault
func Connection(msg string, err error) error {
	return &Error{Kind: KindConnection, Message: msg, Err: err}
}

// Preconditionf creates a precondition fault
func Preconditionf(format string, args ...interface{}) error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// Invocation creates an invocation fault for a named tool
func Invocation(tool string, err error) error {
	return &Error{Kind: KindInvocation, Message: fmt.Sprintf("tool call %s failed", tool), Err: err}
}

// Model creates a model fault
func Model(err error) error {
	return &Error{Kind: KindModel, Message: "model invocation failed", Err: err}
}

// LoopBound creates a loop-bound fault
func LoopBound(iterations int) error {
	return &Error{Kind: KindLoopBound, Message: fmt.Sprintf("tool loop exceeded maximum iterations (%d)", iterations)}
}

// KindOf returns the kind of err, or the empty kind for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a fault of kind k
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
