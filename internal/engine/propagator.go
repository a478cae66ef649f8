package engine

import (
	"fmt"
	"sort"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// SentinelRuleID marks changes made by structural normalization rather than
// by a catalog rule
const SentinelRuleID = "sentinel"

// Adjust rewrites a state to a fixed point of the rule catalog.
//
// Each pass evaluates, in catalog order, the rules whose trigger set
// intersects the categories changed in the previous pass (every rule on the
// first pass) against a working copy, applying autofixes as it goes. Sentinel
// normalization closes each pass. Adjust stops when a pass changes nothing
// and fails with *UnsatisfiableError after as many passes as there are
// categories. The input is never modified.
func (e *Engine) Adjust(s stack.State, opts AdjustOptions) (Result, error) {
	work := materialize(s)

	if opts.Bypass {
		normalizeAll(work, opts.Pinned, nil)
		return Result{State: work}, nil
	}

	changed := make(map[stack.CategoryID]bool, stack.Count())
	for _, id := range stack.IDs() {
		changed[id] = true
	}

	var changes []models.Change
	limit := stack.Count()

	for pass := 1; len(changed) > 0; pass++ {
		if pass > limit {
			return Result{}, &UnsatisfiableError{Categories: sortedIDs(changed), Passes: limit}
		}

		next := make(map[stack.CategoryID]bool)
		for _, r := range e.catalog.Triggered(changed) {
			if opts.Pinned[r.Writes] || !r.Violated(work) {
				continue
			}
			sel, ok := r.Fix(work)
			if !ok {
				continue
			}
			old := work.Get(r.Writes)
			if sel.Equal(old) {
				continue
			}
			changes = append(changes, models.Change{
				Category: string(r.Writes),
				Old:      old.Clone(),
				New:      sel.Clone(),
				Reason:   r.Text(work),
				RuleID:   r.ID,
			})
			work[r.Writes] = sel
			next[r.Writes] = true
		}

		changes = append(changes, normalizeAll(work, opts.Pinned, next)...)
		changed = next
	}

	return Result{State: work, Changes: changes}, nil
}

// AdjustMap is Adjust for the plain map shape used by snapshots and the HTTP API
func (e *Engine) AdjustMap(m map[string][]string, opts AdjustOptions) (Result, error) {
	s, err := stack.FromMap(m)
	if err != nil {
		return Result{}, err
	}
	return e.Adjust(s, opts)
}

// materialize copies s and gives every missing category an explicit None
func materialize(s stack.State) stack.State {
	work := s.Clone()
	for _, id := range stack.IDs() {
		if _, ok := work[id]; !ok {
			work[id] = stack.Normalize(id, stack.Of(stack.None))
		}
	}
	return work
}

// normalizeAll applies sentinel normalization to every unpinned category,
// marking rewritten categories in changed when it is non-nil
func normalizeAll(work stack.State, pinned map[stack.CategoryID]bool, changed map[stack.CategoryID]bool) []models.Change {
	var out []models.Change
	for _, id := range stack.IDs() {
		if pinned[id] {
			continue
		}
		old := work.Get(id)
		sel := stack.Normalize(id, old)
		if sel.Equal(old) {
			continue
		}
		out = append(out, models.Change{
			Category: string(id),
			Old:      old.Clone(),
			New:      sel.Clone(),
			Reason:   fmt.Sprintf("normalized %s selection", id),
			RuleID:   SentinelRuleID,
		})
		work[id] = sel
		if changed != nil {
			changed[id] = true
		}
	}
	return out
}

func sortedIDs(set map[stack.CategoryID]bool) []string {
	ids := make([]stack.CategoryID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return stack.Order(ids[i]) < stack.Order(ids[j]) })
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
