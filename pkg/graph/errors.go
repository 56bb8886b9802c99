package graph

import (
	"errors"
	"fmt"
)

// ErrorKind partitions failures by the pipeline stage that produced them.
type ErrorKind int

const (
	ErrTextProcessing ErrorKind = iota
	ErrEntityExtraction
	ErrGraphBuilding
	ErrExport
	ErrConfiguration
)

var errorKindNames = map[ErrorKind]string{
	ErrTextProcessing:   "text processing",
	ErrEntityExtraction: "entity extraction",
	ErrGraphBuilding:    "graph building",
	ErrExport:           "export",
	ErrConfiguration:    "configuration",
}

// Error is the typed error returned across package boundaries. Construction
// failures (bad patterns, bad config) are fatal; per-extraction LLM failures
// are recovered internally and never reach callers as an Error.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", errorKindNames[e.Kind], e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", errorKindNames[e.Kind], e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an Error with a formatted message and no cause.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error around an underlying cause.
func WrapError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether err is, or wraps, a graph Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == kind
}
