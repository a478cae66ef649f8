package models

import (
	"fmt"
	"strings"
)

// Kind classifies why a configuration is rejected
type Kind string

const (
	// KindHardIncompatibility means two concrete selections are mutually exclusive
	KindHardIncompatibility Kind = "hard_incompatibility"
	// KindMissingRequirement means a selection needs another category to be set
	KindMissingRequirement Kind = "missing_requirement"
	// KindUnsupportedForCategory means a category is meaningless under another category's value
	KindUnsupportedForCategory Kind = "unsupported_for_category"
)

// String returns a human-readable label for the kind
func (k Kind) String() string {
	switch k {
	case KindHardIncompatibility:
		return "incompatible"
	case KindMissingRequirement:
		return "missing requirement"
	case KindUnsupportedForCategory:
		return "unsupported"
	default:
		return string(k)
	}
}

// Severity decides whether a violation rejects a configuration (hard) or is
// only reported and silently corrected (soft)
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// Violation is a rule failure reported by the validator. It never carries
// state and is safe to serialize as-is.
type Violation struct {
	RuleID      string   `json:"rule_id" yaml:"rule_id"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Categories  []string `json:"categories" yaml:"categories"` // categories the rule reads, written category first
	Message     string   `json:"message" yaml:"message"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// IsHard reports whether the violation must reject the configuration
func (v Violation) IsHard() bool {
	return v.Severity != SeveritySoft
}

// Category returns the category the violation is about (the one its rule would rewrite)
func (v Violation) Category() string {
	if len(v.Categories) == 0 {
		return ""
	}
	return v.Categories[0]
}

// String formats the violation on one line
func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.RuleID, v.Category(), v.Message)
}

// CountHard returns how many violations are hard failures
func CountHard(violations []Violation) int {
	n := 0
	for _, v := range violations {
		if v.IsHard() {
			n++
		}
	}
	return n
}

// Change records one field rewritten by the propagator
type Change struct {
	Category string   `json:"category" yaml:"category"`
	Old      []string `json:"old" yaml:"old"`
	New      []string `json:"new" yaml:"new"`
	Reason   string   `json:"reason" yaml:"reason"`
	RuleID   string   `json:"rule_id" yaml:"rule_id"`
}

// String formats the change as "category: old -> new (reason)"
func (c Change) String() string {
	return fmt.Sprintf("%s: %s -> %s (%s)", c.Category, joinValues(c.Old), joinValues(c.New), c.Reason)
}

func joinValues(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	if len(values) == 1 {
		return values[0]
	}
	return "[" + strings.Join(values, ", ") + "]"
}
