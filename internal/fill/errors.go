package fill

import (
	"errors"
	"fmt"
)

// GenError represents a failure of the placement search.
//
// Generation errors include:
//   - Configuration: pool size does not match the fillable locations
//   - Deadlock: no valid swap found within the swap budget
//   - Exhausted: the attempt cap was reached without a valid placement
//   - Validation: a finished placement failed the accessibility re-check
//
// GenError includes structured fields for diagnostics; failure handling
// is explicit result values through the state machine's return path,
// never unwinding control flow.
type GenError struct {
	// Code identifies the error category.
	Code GenErrorCode

	// Message is a human-readable description.
	Message string

	// Attempt is the 1-based attempt on which the failure occurred.
	Attempt int

	// Sphere is the sphere index at the time of failure, where known.
	Sphere int

	// Details contains additional context.
	Details map[string]string
}

// GenErrorCode categorizes generation errors.
type GenErrorCode string

const (
	// ErrCodeConfiguration indicates the pool cannot cover the
	// non-locked locations exactly. Fatal, never retried.
	ErrCodeConfiguration GenErrorCode = "CONFIGURATION"

	// ErrCodeDeadlock indicates the frontier stayed empty and no swap
	// within the budget reopened it. Fails the attempt only.
	ErrCodeDeadlock GenErrorCode = "DEADLOCK"

	// ErrCodeExhausted indicates the attempt cap was reached.
	ErrCodeExhausted GenErrorCode = "ATTEMPTS_EXHAUSTED"

	// ErrCodeValidation indicates a finished placement failed the
	// independent accessibility re-check.
	ErrCodeValidation GenErrorCode = "VALIDATION"
)

// Error implements the error interface.
func (e *GenError) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("%s: %s (attempt=%d, sphere=%d)", e.Code, e.Message, e.Attempt, e.Sphere)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigurationError returns true if the error is a configuration
// error. Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	return hasCode(err, ErrCodeConfiguration)
}

// IsDeadlockError returns true if the error is a deadlock error.
func IsDeadlockError(err error) bool {
	return hasCode(err, ErrCodeDeadlock)
}

// IsExhaustedError returns true if the error is an attempt-exhaustion
// error.
func IsExhaustedError(err error) bool {
	return hasCode(err, ErrCodeExhausted)
}

// IsValidationError returns true if the error is a validation error.
func IsValidationError(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func hasCode(err error, code GenErrorCode) bool {
	var ge *GenError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}
