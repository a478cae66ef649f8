package engine

import (
	"fmt"
	"strings"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/rules"
	"github.com/harrison/stackforge/internal/stack"
)

// Validate checks a state against every rule without changing it.
//
// Categories are visited in catalog order. For each one the structural
// checks (domain membership, sentinel shape) run first, then the hard rules
// that write it in declaration order. Soft violations are collected
// separately and appended after the hard ones.
func (e *Engine) Validate(s stack.State, opts ValidateOptions) []models.Violation {
	if opts.Bypass {
		return nil
	}

	var hard, soft []models.Violation
	groups := make(map[stack.Group]bool)

	// emit records a violation and reports whether validation should stop
	emit := func(v models.Violation, g stack.Group) bool {
		if !v.IsHard() {
			soft = append(soft, v)
			return false
		}
		switch opts.Mode {
		case FailFast:
			hard = append(hard, v)
			return true
		case FirstPerGroup:
			if !groups[g] {
				groups[g] = true
				hard = append(hard, v)
			}
		default:
			hard = append(hard, v)
		}
		return false
	}

	for _, c := range stack.Categories() {
		for _, v := range structuralViolations(c, s.Get(c.ID)) {
			if emit(v, c.Group) {
				return hard
			}
		}
		for _, r := range e.catalog.Writing(c.ID) {
			if !r.Violated(s) {
				continue
			}
			if emit(violationFor(r, s), c.Group) {
				return hard
			}
		}
	}

	return append(hard, soft...)
}

// IsValid reports whether a state has no hard violations
func (e *Engine) IsValid(s stack.State) bool {
	return models.CountHard(e.Validate(s, ValidateOptions{Mode: FailFast})) == 0
}

func violationFor(r rules.Rule, s stack.State) models.Violation {
	return models.Violation{
		RuleID:      r.ID,
		Kind:        r.Kind,
		Severity:    r.Severity,
		Categories:  r.Categories(),
		Message:     r.Text(s),
		Suggestions: r.Hints(s),
	}
}

// structuralViolations checks domain membership and the sentinel shape of
// one category's selection
func structuralViolations(c stack.Category, sel stack.Selection) []models.Violation {
	var out []models.Violation

	var unknown []string
	for _, v := range sel {
		if !c.InDomain(v) {
			unknown = append(unknown, v)
		}
	}
	if len(unknown) > 0 {
		out = append(out, models.Violation{
			RuleID:      "domain:" + string(c.ID),
			Kind:        models.KindUnsupportedForCategory,
			Severity:    models.SeverityHard,
			Categories:  []string{string(c.ID)},
			Message:     fmt.Sprintf("%s is not a valid %s option.", quoteAll(unknown), strings.ToLower(c.Label)),
			Suggestions: []string{"Allowed values: " + strings.Join(c.Domain, ", ")},
		})
	}

	if problem := sentinelProblem(c, sel); problem != "" {
		out = append(out, models.Violation{
			RuleID:      "sentinel:" + string(c.ID),
			Kind:        models.KindUnsupportedForCategory,
			Severity:    models.SeverityHard,
			Categories:  []string{string(c.ID)},
			Message:     problem,
			Suggestions: []string{fmt.Sprintf("Use %q alone to select nothing", stack.None)},
		})
	}
	return out
}

// sentinelProblem describes how a selection breaks the sentinel invariant,
// or returns "" when it holds. Ordering is not checked.
func sentinelProblem(c stack.Category, sel stack.Selection) string {
	if !c.IsSet() {
		if len(sel) != 1 {
			return fmt.Sprintf("%s takes exactly one value (got %d).", c.Label, len(sel))
		}
		return ""
	}

	if len(sel) == 0 {
		if c.AllowEmpty {
			return ""
		}
		return fmt.Sprintf("%s cannot be empty; use %q.", c.Label, stack.None)
	}

	seen := make(map[string]bool, len(sel))
	for _, v := range sel {
		if seen[v] {
			return fmt.Sprintf("%s lists %q more than once.", c.Label, v)
		}
		seen[v] = true
	}
	if seen[stack.None] && len(sel) > 1 {
		return fmt.Sprintf("%s cannot combine %q with other values.", c.Label, stack.None)
	}
	return ""
}

func quoteAll(values []string) string {
	q := make([]string, len(values))
	for i, v := range values {
		q[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(q, ", ")
}
