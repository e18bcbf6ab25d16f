package model

import (
	"errors"
	"fmt"
)

// Kind classifies why a simulation request failed.
type Kind string

const (
	KindMalformedInput       Kind = "MALFORMED_INPUT"
	KindInsufficientData     Kind = "INSUFFICIENT_DATA"
	KindGridIncompatible     Kind = "GRID_INCOMPATIBLE"
	KindConstraintInfeasible Kind = "CONSTRAINT_INFEASIBLE"
	KindInvalidConfig        Kind = "INVALID_CONFIG"
	KindProblemTooLarge      Kind = "PROBLEM_TOO_LARGE"
)

// Error is the single typed failure of a simulation. Every kind is terminal
// for the request.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, &Error{Kind: KindInsufficientData}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
