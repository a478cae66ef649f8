package stack

import (
	"fmt"
	"sort"
	"strings"
)

// Selection is the value of one category. Single-value categories hold
// exactly one element; set categories hold zero or more.
type Selection []string

// Of builds a selection from values
func Of(values ...string) Selection {
	return Selection(append([]string{}, values...))
}

// Single returns the selection's only value, or None when empty
func (s Selection) Single() string {
	if len(s) == 0 {
		return None
	}
	return s[0]
}

// Contains reports whether v is selected
func (s Selection) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// IsNone reports whether the selection is empty or exactly the sentinel
func (s Selection) IsNone() bool {
	return len(s) == 0 || (len(s) == 1 && s[0] == None)
}

// Equal compares two selections element by element
func (s Selection) Equal(other Selection) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no memory with s
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	return append(Selection{}, s...)
}

// Without returns a copy of s with v removed
func (s Selection) Without(v string) Selection {
	out := Selection{}
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// String renders a single value bare and a set as [a, b]
func (s Selection) String() string {
	if len(s) == 1 {
		return s[0]
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// State maps every category to its selection. It is a plain value: the
// engine never retains one between calls, and callers clone before sharing.
type State map[CategoryID]Selection

// Defaults returns a fresh state holding every category's default selection
func Defaults() State {
	s := make(State, len(categories))
	for _, c := range categories {
		s[c.ID] = Normalize(c.ID, Of(c.Default...))
	}
	return s
}

// Clone deep-copies the state
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// Get returns the selection for a category. A missing category reads as None.
func (s State) Get(id CategoryID) Selection {
	sel, ok := s[id]
	if !ok {
		return Of(None)
	}
	return sel
}

// Value returns the single value of a category
func (s State) Value(id CategoryID) string {
	return s.Get(id).Single()
}

// Is reports whether a single-value category currently holds v
func (s State) Is(id CategoryID, v string) bool {
	return s.Value(id) == v
}

// Has reports whether the category's selection contains v
func (s State) Has(id CategoryID, v string) bool {
	return s.Get(id).Contains(v)
}

// Set stores a selection as given (callers normalize when needed)
func (s State) Set(id CategoryID, sel Selection) {
	s[id] = sel.Clone()
}

// Equal reports whether two states hold identical selections for every category
func (s State) Equal(other State) bool {
	for _, id := range IDs() {
		if !s.Get(id).Equal(other.Get(id)) {
			return false
		}
	}
	return true
}

// Fill returns a copy of s where every missing category takes its default
func (s State) Fill() State {
	out := s.Clone()
	for _, c := range categories {
		if _, ok := out[c.ID]; !ok {
			out[c.ID] = Normalize(c.ID, Of(c.Default...))
		}
	}
	return out
}

// ToMap converts the state to the plain shape used by snapshots and JSON
func (s State) ToMap() map[string][]string {
	out := make(map[string][]string, len(s))
	for _, id := range IDs() {
		out[string(id)] = append([]string{}, s.Get(id)...)
	}
	return out
}

// FromMap builds a state from the plain shape. Unknown category keys are an
// error; missing categories take their defaults. Values are not checked
// against domains here, that is the validator's job.
func FromMap(m map[string][]string) (State, error) {
	s := make(State, len(m))
	var unknown []string
	for k, v := range m {
		id, ok := ParseCategoryID(k)
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		s[id] = Normalize(id, Of(v...))
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown categories: %s", strings.Join(unknown, ", "))
	}
	return s.Fill(), nil
}

// String renders the state as "category=value" pairs in catalog order
func (s State) String() string {
	parts := make([]string, 0, len(categories))
	for _, id := range IDs() {
		parts = append(parts, fmt.Sprintf("%s=%s", id, s.Get(id)))
	}
	return strings.Join(parts, " ")
}
