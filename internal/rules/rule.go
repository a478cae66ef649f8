// Package rules holds the compatibility rule catalog: one declarative table
// of cross-category constraints shared by the validator, the propagator and
// the availability oracle.
//
// A rule names the categories it reads (its trigger set) and the single
// category its autofix may rewrite. Every autofix moves its category toward
// a fixed target (None, a required value, or a smaller set) so repeated
// application converges.
package rules

import (
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// Rule is one compatibility constraint
type Rule struct {
	ID       string
	Kind     models.Kind
	Severity models.Severity

	// Reads lists every category Predicate, Autofix and Message look at.
	// It always includes Writes.
	Reads  []stack.CategoryID
	Writes stack.CategoryID

	// Predicate returns true when the state violates the rule
	Predicate func(stack.State) bool
	// Autofix returns the replacement selection for Writes, or nil when the
	// violation cannot be repaired automatically
	Autofix     func(stack.State) stack.Selection
	Message     func(stack.State) string
	Suggestions func(stack.State) []string
}

// Violated evaluates the predicate
func (r Rule) Violated(s stack.State) bool {
	return r.Predicate != nil && r.Predicate(s)
}

// HasAutofix reports whether the rule can repair its own violation
func (r Rule) HasAutofix() bool {
	return r.Autofix != nil
}

// Fix computes the normalized replacement for the written category. ok is
// false when the rule has no autofix or the autofix declined.
func (r Rule) Fix(s stack.State) (stack.Selection, bool) {
	if r.Autofix == nil {
		return nil, false
	}
	sel := r.Autofix(s)
	if sel == nil {
		return nil, false
	}
	return stack.Normalize(r.Writes, sel), true
}

// Triggers reports whether a change to id requires re-evaluating the rule
func (r Rule) Triggers(id stack.CategoryID) bool {
	for _, c := range r.Reads {
		if c == id {
			return true
		}
	}
	return false
}

// Text renders the rule message for a state
func (r Rule) Text(s stack.State) string {
	if r.Message == nil {
		return r.ID
	}
	return r.Message(s)
}

// Hints renders the remediation suggestions for a state
func (r Rule) Hints(s stack.State) []string {
	if r.Suggestions == nil {
		return nil
	}
	return r.Suggestions(s)
}

// IsHard reports whether the rule rejects configurations in strict mode
func (r Rule) IsHard() bool {
	return r.Severity != models.SeveritySoft
}

// Categories returns the written category followed by the other categories
// the rule reads, as strings for diagnostics
func (r Rule) Categories() []string {
	out := []string{string(r.Writes)}
	for _, c := range r.Reads {
		if c != r.Writes {
			out = append(out, string(c))
		}
	}
	return out
}
