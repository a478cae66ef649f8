package stack

// Select returns a copy of s with v chosen for the category, the way a user
// picks an option:
//
//   - single categories take v
//   - choosing None clears a set category
//   - frontend holds at most one web and one native framework, so picking a
//     web framework replaces the current web framework and likewise for native
//   - other set categories gain v
//
// The result is normalized. s is not modified.
func Select(s State, id CategoryID, v string) State {
	out := s.Clone()
	c, ok := Lookup(id)
	if !ok {
		return out
	}

	if !c.IsSet() {
		out[id] = Of(v)
		return out
	}

	if v == None {
		out[id] = Normalize(id, Selection{})
		return out
	}

	cur := out.Get(id)
	next := Selection{}
	for _, x := range cur {
		if id == Frontend && sameFrontendGroup(x, v) {
			continue
		}
		next = append(next, x)
	}
	next = append(next, v)
	out[id] = Normalize(id, next)
	return out
}

// Deselect returns a copy of s with v removed from a set category. For a
// single category it resets the value to None.
func Deselect(s State, id CategoryID, v string) State {
	out := s.Clone()
	c, ok := Lookup(id)
	if !ok {
		return out
	}
	if !c.IsSet() {
		if out.Value(id) == v {
			out[id] = Of(None)
		}
		return out
	}
	out[id] = Normalize(id, out.Get(id).Without(v))
	return out
}

// Holds reports whether a selection still carries the value a user picked.
// Picking None on a set category is held by {none} or the empty set.
func Holds(id CategoryID, sel Selection, v string) bool {
	if v == None {
		return sel.IsNone()
	}
	return sel.Contains(v)
}

func sameFrontendGroup(a, b string) bool {
	if IsWebFramework(a) && IsWebFramework(b) {
		return true
	}
	return IsNativeFramework(a) && IsNativeFramework(b)
}

// MergeFrontend combines the web configurator's separate web and native
// pickers into the canonical frontend set
func MergeFrontend(web, native []string) Selection {
	merged := append(append(Selection{}, web...), native...)
	return Normalize(Frontend, merged)
}

// SplitFrontend is the inverse of MergeFrontend
func SplitFrontend(sel Selection) (web, native []string) {
	for _, v := range sel {
		switch {
		case IsWebFramework(v):
			web = append(web, v)
		case IsNativeFramework(v):
			native = append(native, v)
		}
	}
	return web, native
}

// Web returns the web framework in the frontend selection, or None
func (s State) Web() string {
	web, _ := SplitFrontend(s.Get(Frontend))
	if len(web) == 0 {
		return None
	}
	return web[0]
}

// Native returns the native framework in the frontend selection, or None
func (s State) Native() string {
	_, native := SplitFrontend(s.Get(Frontend))
	if len(native) == 0 {
		return None
	}
	return native[0]
}
