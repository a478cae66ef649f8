package snapshot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/stackforge/internal/models"
)

// ConfigParseError reports a snapshot that cannot be read: malformed YAML,
// unknown categories or values outside a category's domain.
type ConfigParseError struct {
	File     string   // snapshot path, empty for in-memory documents
	Problems []string // one entry per bad key or value
	Err      error    // underlying decode error (optional)
}

// Error implements the error interface for ConfigParseError.
func (e *ConfigParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid snapshot")
	if e.File != "" {
		sb.WriteString(" ")
		sb.WriteString(e.File)
	}
	if len(e.Problems) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Problems, "; "))
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ConfigParseError) Unwrap() error {
	return e.Err
}

// IsConfigParseError checks if an error is a ConfigParseError
func IsConfigParseError(err error) bool {
	var target *ConfigParseError
	return errors.As(err, &target)
}

// UnsupportedConfigurationError reports a readable snapshot whose stack the
// current rules reject. The add flow refuses to touch such projects.
type UnsupportedConfigurationError struct {
	File       string
	Violations []models.Violation
}

// Error implements the error interface for UnsupportedConfigurationError.
func (e *UnsupportedConfigurationError) Error() string {
	hard := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.IsHard() {
			hard = append(hard, v.Message)
		}
	}
	return fmt.Sprintf("unsupported configuration in %s: %s", e.File, strings.Join(hard, "; "))
}

// IsUnsupportedConfiguration checks if an error is an UnsupportedConfigurationError
func IsUnsupportedConfiguration(err error) bool {
	var target *UnsupportedConfigurationError
	return errors.As(err, &target)
}
