package rules

import (
	"fmt"
	"strings"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// LintError lists every problem found in a rule table
type LintError struct {
	Problems []string
}

// Error implements the error interface for LintError.
func (e *LintError) Error() string {
	return fmt.Sprintf("rule catalog has %d problem(s):\n  - %s", len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// Lint checks a rule table for structural mistakes: duplicate or empty IDs,
// unknown categories, a written category missing from the trigger set,
// missing predicates or messages and unknown kinds or severities.
func Lint(rs []Rule) error {
	var problems []string
	seen := make(map[string]bool, len(rs))

	for i, r := range rs {
		name := r.ID
		if name == "" {
			name = fmt.Sprintf("rule #%d", i)
			problems = append(problems, fmt.Sprintf("%s: empty ID", name))
		} else if seen[r.ID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate ID", name))
		}
		seen[r.ID] = true

		if _, ok := stack.Lookup(r.Writes); !ok {
			problems = append(problems, fmt.Sprintf("%s: writes unknown category %q", name, r.Writes))
		}
		for _, id := range r.Reads {
			if _, ok := stack.Lookup(id); !ok {
				problems = append(problems, fmt.Sprintf("%s: reads unknown category %q", name, id))
			}
		}
		if !r.Triggers(r.Writes) {
			problems = append(problems, fmt.Sprintf("%s: trigger set must include written category %q", name, r.Writes))
		}
		if r.Predicate == nil {
			problems = append(problems, fmt.Sprintf("%s: missing predicate", name))
		}
		if r.Message == nil {
			problems = append(problems, fmt.Sprintf("%s: missing message", name))
		}

		switch r.Kind {
		case models.KindHardIncompatibility, models.KindMissingRequirement, models.KindUnsupportedForCategory:
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown kind %q", name, r.Kind))
		}
		switch r.Severity {
		case models.SeverityHard, models.SeveritySoft:
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown severity %q", name, r.Severity))
		}
		if r.Severity == models.SeveritySoft && r.Autofix == nil {
			problems = append(problems, fmt.Sprintf("%s: soft rules need an autofix", name))
		}
	}

	if len(problems) > 0 {
		return &LintError{Problems: problems}
	}
	return nil
}

// CheckAutofix verifies that a rule's autofix, applied to a state the rule
// rejects, yields a selection inside the written category's domain
func CheckAutofix(r Rule, s stack.State) error {
	sel, ok := r.Fix(s)
	if !ok {
		return nil
	}
	c := stack.MustLookup(r.Writes)
	for _, v := range sel {
		if !c.InDomain(v) {
			return fmt.Errorf("%s: autofix produced %q outside the %s domain", r.ID, v, r.Writes)
		}
	}
	return nil
}
