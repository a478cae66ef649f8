package stack

// Normalize brings a selection to the canonical shape for its category:
//
//   - single categories keep exactly one value (first non-empty, else None)
//   - set categories are de-duplicated and sorted in domain order
//   - a set is either exactly {none} or a non-empty set without none;
//     an empty set snaps back to {none} unless the category allows empty
//     sets, in which case {none} collapses to the empty set
//
// Values outside the domain are kept (after the known ones, in their
// original order) so the validator can still report them.
func Normalize(id CategoryID, sel Selection) Selection {
	c, ok := Lookup(id)
	if !ok {
		return sel.Clone()
	}

	if !c.IsSet() {
		for _, v := range sel {
			if v != "" {
				return Of(v)
			}
		}
		return Of(None)
	}

	seen := make(map[string]bool, len(sel))
	for _, v := range sel {
		if v != "" {
			seen[v] = true
		}
	}

	out := Selection{}
	for _, v := range c.Domain {
		if v != None && seen[v] {
			out = append(out, v)
			delete(seen, v)
		}
	}
	for _, v := range sel {
		if v != None && seen[v] {
			out = append(out, v)
			delete(seen, v)
		}
	}

	if len(out) == 0 {
		if c.AllowEmpty {
			return Selection{}
		}
		return Of(None)
	}
	return out
}

// IsNormalized reports whether sel already satisfies the sentinel invariant
// and ordering rules for its category
func IsNormalized(id CategoryID, sel Selection) bool {
	return Normalize(id, sel).Equal(sel)
}
