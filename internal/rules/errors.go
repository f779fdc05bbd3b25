package rules

import (
	"errors"
	"fmt"
	"strings"
)

// CompileError represents an error detected while compiling a rule
// expression or resolving the named predicate registry.
//
// Compile errors are fatal and halt generation before any placement
// attempt runs. They are never downgraded to an "always true" rule.
type CompileError struct {
	// Code identifies the error category.
	Code CompileErrorCode

	// Message is a human-readable description.
	Message string

	// Name identifies the named predicate being compiled, if any.
	Name string

	// Cycle holds the reference path for cycle errors,
	// e.g. ["deep_sea", "sunken_gate", "deep_sea"].
	Cycle []string
}

// CompileErrorCode categorizes compile errors.
type CompileErrorCode string

const (
	// ErrCodeMalformed indicates a structurally invalid expression node
	// (empty name, negative count, nil child, unknown variant).
	ErrCodeMalformed CompileErrorCode = "MALFORMED_RULE"

	// ErrCodeUnresolved indicates a Named reference with no registry entry.
	ErrCodeUnresolved CompileErrorCode = "UNRESOLVED_PREDICATE"

	// ErrCodeCycle indicates named predicates that reference each other
	// in a loop, which would never terminate at evaluation time.
	ErrCodeCycle CompileErrorCode = "PREDICATE_CYCLE"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, strings.Join(e.Cycle, " -> "))
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (predicate=%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleError returns true if the error is a predicate cycle error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeCycle
	}
	return false
}

// IsMalformedError returns true if the error is a malformed rule error.
func IsMalformedError(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeMalformed
	}
	return false
}

func newMalformedError(format string, args ...any) *CompileError {
	return &CompileError{
		Code:    ErrCodeMalformed,
		Message: fmt.Sprintf(format, args...),
	}
}
