package engine

import (
	"fmt"

	"github.com/harrison/stackforge/internal/rules"
	"github.com/harrison/stackforge/internal/stack"
)

// IsAvailable reports whether choosing v for a category would survive
// Adjust. It never modifies s.
func (e *Engine) IsAvailable(s stack.State, id stack.CategoryID, v string) bool {
	return e.DisabledReason(s, id, v) == ""
}

// DisabledReason explains why v cannot be chosen for a category, or returns
// "" when it can.
//
// The choice is applied to a scratch copy and propagated with nothing
// pinned. Only rules that write the category can take v away again, so a
// choice that merely forces changes elsewhere stays available.
func (e *Engine) DisabledReason(s stack.State, id stack.CategoryID, v string) string {
	c, ok := stack.Lookup(id)
	if !ok {
		return fmt.Sprintf("Unknown category %q.", id)
	}
	if !c.InDomain(v) {
		return fmt.Sprintf("%q is not a valid %s option.", v, c.Label)
	}

	res, err := e.Adjust(stack.Select(s, id, v), AdjustOptions{})
	if err != nil {
		return err.Error()
	}

	if stack.Holds(id, res.State.Get(id), v) {
		return ""
	}
	for _, ch := range res.Changes {
		if ch.Category == string(id) && stack.Holds(id, ch.Old, v) && !stack.Holds(id, ch.New, v) {
			return ch.Reason
		}
	}
	return fmt.Sprintf("%s is not compatible with the current selection.", rules.DisplayName(v))
}

// Options lists every value of a category with its availability, in domain order
func (e *Engine) Options(s stack.State, id stack.CategoryID) []Option {
	c, ok := stack.Lookup(id)
	if !ok {
		return nil
	}
	current := s.Get(id)

	out := make([]Option, 0, len(c.Domain))
	for _, v := range c.Domain {
		reason := e.DisabledReason(s, id, v)
		out = append(out, Option{
			Value:     v,
			Label:     rules.DisplayName(v),
			Selected:  stack.Holds(id, current, v),
			Available: reason == "",
			Reason:    reason,
		})
	}
	return out
}
