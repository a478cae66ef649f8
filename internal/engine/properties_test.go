package engine

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/harrison/stackforge/internal/stack"
)

const propertyRuns = 2000

// randomState draws every category from its domain. Set categories get a
// random subset which may be unnormalized, so sentinel handling is exercised
// as well.
func randomState(r *rand.Rand) stack.State {
	s := make(stack.State, stack.Count())
	for _, c := range stack.Categories() {
		if !c.IsSet() {
			s[c.ID] = stack.Of(c.Domain[r.Intn(len(c.Domain))])
			continue
		}
		sel := stack.Selection{}
		for _, v := range c.Domain {
			if r.Intn(3) == 0 {
				sel = append(sel, v)
			}
		}
		if len(sel) == 0 && !c.AllowEmpty {
			sel = stack.Of(stack.None)
		}
		s[c.ID] = sel
	}
	return s
}

func TestPropertyAdjustTerminatesAndIsValid(t *testing.T) {
	e := New(nil)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < propertyRuns; i++ {
		s := randomState(r)
		res, err := e.Adjust(s, AdjustOptions{})
		if err != nil {
			t.Fatalf("Adjust(%s) failed: %v", s, err)
		}
		if vs := e.Validate(res.State, ValidateOptions{Mode: CollectAll}); len(vs) > 0 {
			t.Fatalf("Adjust(%s) = %s still has violations: %v", s, res.State, vs)
		}
	}
}

func TestPropertyAdjustIsIdempotent(t *testing.T) {
	e := New(nil)
	r := rand.New(rand.NewSource(2))

	for i := 0; i < propertyRuns; i++ {
		first, err := e.Adjust(randomState(r), AdjustOptions{})
		if err != nil {
			t.Fatal(err)
		}
		second, err := e.Adjust(first.State, AdjustOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if len(second.Changes) > 0 {
			t.Fatalf("second Adjust of %s changed: %v", first.State, second.Changes)
		}
		if !second.State.Equal(first.State) {
			t.Fatalf("Adjust not idempotent: %s vs %s", first.State, second.State)
		}
	}
}

// randomPins pins each category with probability one in three
func randomPins(r *rand.Rand) map[stack.CategoryID]bool {
	pins := make(map[stack.CategoryID]bool)
	for _, id := range stack.IDs() {
		if r.Intn(3) == 0 {
			pins[id] = true
		}
	}
	return pins
}

func TestPropertyPinnedAdjustSettles(t *testing.T) {
	e := New(nil)
	r := rand.New(rand.NewSource(7))

	for i := 0; i < propertyRuns*5; i++ {
		s := randomState(r)
		opts := AdjustOptions{Pinned: randomPins(r)}

		first, err := e.Adjust(s, opts)
		if IsUnsatisfiable(err) {
			t.Fatalf("Adjust(%s) pinned %v did not settle: %v", s, opts.Pinned, err)
		}
		if err != nil {
			t.Fatal(err)
		}
		for id := range opts.Pinned {
			if !first.State.Get(id).Equal(s.Get(id)) {
				t.Fatalf("pinned %s rewritten: %v -> %v", id, s.Get(id), first.State.Get(id))
			}
		}

		second, err := e.Adjust(first.State, opts)
		if err != nil {
			t.Fatal(err)
		}
		if len(second.Changes) > 0 {
			t.Fatalf("second pinned Adjust of %s changed: %v", first.State, second.Changes)
		}
	}
}

func TestPropertySentinelInvariant(t *testing.T) {
	e := New(nil)
	r := rand.New(rand.NewSource(3))

	for i := 0; i < propertyRuns; i++ {
		res, err := e.Adjust(randomState(r), AdjustOptions{})
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range stack.Categories() {
			sel := res.State.Get(c.ID)
			if !c.IsSet() {
				if len(sel) != 1 {
					t.Fatalf("%s holds %v after Adjust", c.ID, sel)
				}
				continue
			}
			if len(sel) == 0 {
				if !c.AllowEmpty {
					t.Fatalf("%s is empty after Adjust", c.ID)
				}
				continue
			}
			if sel.Contains(stack.None) && len(sel) != 1 {
				t.Fatalf("%s mixes none with values: %v", c.ID, sel)
			}
		}
	}
}

func TestPropertyOracleMatchesPropagator(t *testing.T) {
	e := New(nil)
	r := rand.New(rand.NewSource(4))
	cats := stack.Categories()

	for i := 0; i < propertyRuns/4; i++ {
		s := randomState(r)
		c := cats[r.Intn(len(cats))]
		v := c.Domain[r.Intn(len(c.Domain))]

		reason := e.DisabledReason(s, c.ID, v)
		res, err := e.Adjust(stack.Select(s, c.ID, v), AdjustOptions{})
		if err != nil {
			t.Fatal(err)
		}
		held := stack.Holds(c.ID, res.State.Get(c.ID), v)

		if reason == "" && !held {
			t.Fatalf("%s=%s reported available but Adjust dropped it (state %s)", c.ID, v, s)
		}
		if reason != "" && held {
			t.Fatalf("%s=%s reported unavailable (%s) but Adjust keeps it", c.ID, v, reason)
		}
	}
}

func TestPropertyDeterministic(t *testing.T) {
	e := New(nil)
	r := rand.New(rand.NewSource(5))

	for i := 0; i < propertyRuns/4; i++ {
		s := randomState(r)

		a, errA := e.Adjust(s, AdjustOptions{})
		b, errB := e.Adjust(s.Clone(), AdjustOptions{})
		if (errA == nil) != (errB == nil) {
			t.Fatalf("Adjust errors differ: %v vs %v", errA, errB)
		}
		if diff := cmp.Diff(a.Changes, b.Changes); diff != "" {
			t.Fatalf("Adjust changes differ (-a +b):\n%s", diff)
		}

		va := e.Validate(s, ValidateOptions{Mode: CollectAll})
		vb := e.Validate(s, ValidateOptions{Mode: CollectAll})
		if diff := cmp.Diff(va, vb); diff != "" {
			t.Fatalf("Validate results differ (-a +b):\n%s", diff)
		}
	}
}

func TestPropertyFailFastIsPrefixOfCollectAll(t *testing.T) {
	e := New(nil)
	r := rand.New(rand.NewSource(6))

	for i := 0; i < propertyRuns/4; i++ {
		s := randomState(r)
		all := e.Validate(s, ValidateOptions{Mode: CollectAll})
		first := e.Validate(s, ValidateOptions{Mode: FailFast})
		if len(all) == 0 {
			if len(first) != 0 {
				t.Fatalf("FailFast found %v where CollectAll found nothing", first)
			}
			continue
		}
		if all[0].IsHard() {
			if len(first) != 1 || first[0].RuleID != all[0].RuleID {
				t.Fatalf("FailFast = %v, want first of %v", first, all)
			}
		}
	}
}
