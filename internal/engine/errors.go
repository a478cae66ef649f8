package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// UnsatisfiableError is returned by Adjust when the rules keep rewriting the
// same categories past the pass limit. It indicates a defect in the rule
// catalog, not in the user's input.
type UnsatisfiableError struct {
	Categories []string // categories still changing in the last pass
	Passes     int
}

// Error implements the error interface for UnsatisfiableError.
func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("configuration did not settle after %d passes; still changing: %s",
		e.Passes, strings.Join(e.Categories, ", "))
}

// IsUnsatisfiable checks if an error is an UnsatisfiableError
func IsUnsatisfiable(err error) bool {
	var target *UnsatisfiableError
	return errors.As(err, &target)
}

// ValidationError wraps the hard violations that rejected a configuration
type ValidationError struct {
	Violations []models.Violation
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	hard := models.CountHard(e.Violations)
	if hard == 1 {
		for _, v := range e.Violations {
			if v.IsHard() {
				return "invalid configuration: " + v.Message
			}
		}
	}
	return fmt.Sprintf("invalid configuration: %d incompatibilities", hard)
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Check validates and returns a *ValidationError when any hard violation is
// found. Soft violations never fail Check.
func (e *Engine) Check(s stack.State, opts ValidateOptions) error {
	violations := e.Validate(s, opts)
	if models.CountHard(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
