package rules

import (
	"fmt"
	"sort"

	"github.com/harrison/stackforge/internal/stack"
)

// Catalog is an ordered, indexed rule table. Rules are sorted by the
// evaluation order of the category they write, ties keeping declaration
// order. A Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	rules     []Rule
	byID      map[string]int
	byTrigger map[stack.CategoryID][]int
	byWrite   map[stack.CategoryID][]int
}

// New builds a catalog after checking the rules with Lint
func New(rs []Rule) (*Catalog, error) {
	if err := Lint(rs); err != nil {
		return nil, err
	}

	ordered := append([]Rule(nil), rs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return stack.Order(ordered[i].Writes) < stack.Order(ordered[j].Writes)
	})

	c := &Catalog{
		rules:     ordered,
		byID:      make(map[string]int, len(ordered)),
		byTrigger: make(map[stack.CategoryID][]int),
		byWrite:   make(map[stack.CategoryID][]int),
	}
	for i, r := range ordered {
		c.byID[r.ID] = i
		c.byWrite[r.Writes] = append(c.byWrite[r.Writes], i)
		for _, id := range r.Reads {
			c.byTrigger[id] = append(c.byTrigger[id], i)
		}
	}
	return c, nil
}

// Default returns a catalog of the built-in rules. Each call builds a new
// catalog; nothing is cached at package level.
func Default() *Catalog {
	c, err := New(Builtin())
	if err != nil {
		panic(fmt.Sprintf("rules: built-in catalog is malformed: %v", err))
	}
	return c
}

// Builtin returns the built-in rules in declaration order
func Builtin() []Rule {
	var rs []Rule
	rs = append(rs, frontendRules()...)
	rs = append(rs, backendRules()...)
	rs = append(rs, runtimeRules()...)
	rs = append(rs, databaseRules()...)
	rs = append(rs, ormRules()...)
	rs = append(rs, dbSetupRules()...)
	rs = append(rs, apiRules()...)
	rs = append(rs, authRules()...)
	rs = append(rs, paymentsRules()...)
	rs = append(rs, addonRules()...)
	rs = append(rs, exampleRules()...)
	rs = append(rs, deployRules()...)
	rs = append(rs, toolingRules()...)
	return rs
}

// Len returns the number of rules
func (c *Catalog) Len() int {
	return len(c.rules)
}

// All returns every rule in evaluation order
func (c *Catalog) All() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Get returns a rule by ID
func (c *Catalog) Get(id string) (Rule, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// ByTrigger returns the rules whose trigger set includes id, in evaluation order
func (c *Catalog) ByTrigger(id stack.CategoryID) []Rule {
	return c.pick(c.byTrigger[id])
}

// Writing returns the rules whose autofix rewrites id, in evaluation order
func (c *Catalog) Writing(id stack.CategoryID) []Rule {
	return c.pick(c.byWrite[id])
}

// Triggered returns the rules whose trigger set intersects changed, in
// evaluation order and without duplicates
func (c *Catalog) Triggered(changed map[stack.CategoryID]bool) []Rule {
	seen := make(map[int]bool)
	var idx []int
	for id := range changed {
		for _, i := range c.byTrigger[id] {
			if !seen[i] {
				seen[i] = true
				idx = append(idx, i)
			}
		}
	}
	sort.Ints(idx)
	return c.pick(idx)
}

func (c *Catalog) pick(idx []int) []Rule {
	out := make([]Rule, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.rules[i])
	}
	return out
}
