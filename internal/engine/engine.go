// Package engine interprets the compatibility rule catalog three ways:
//
//   - Validate rejects a configuration (strict mode, used by the CLI)
//   - Adjust rewrites a configuration to the nearest valid one (soft mode,
//     used by the interactive configurator)
//   - IsAvailable, DisabledReason and Options preview whether a single
//     choice would survive adjustment
//
// An Engine holds only its immutable rule catalog. Every call works on its
// own copy of the input state, so one Engine can serve concurrent callers.
package engine

import (
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/rules"
	"github.com/harrison/stackforge/internal/stack"
)

// Mode controls how many violations Validate reports
type Mode int

const (
	// CollectAll reports every violation
	CollectAll Mode = iota
	// FailFast stops at the first hard violation
	FailFast
	// FirstPerGroup reports the first hard violation of each category group
	FirstPerGroup
)

// String returns the flag spelling of the mode
func (m Mode) String() string {
	switch m {
	case CollectAll:
		return "collect-all"
	case FailFast:
		return "fail-fast"
	case FirstPerGroup:
		return "first-per-group"
	default:
		return "unknown"
	}
}

// ParseMode resolves a mode name; unknown names fall back to FailFast
func ParseMode(name string) Mode {
	switch name {
	case "collect-all", "all":
		return CollectAll
	case "first-per-group", "group":
		return FirstPerGroup
	default:
		return FailFast
	}
}

// ValidateOptions configures a Validate call
type ValidateOptions struct {
	Mode Mode
	// Bypass skips every rule (the --yolo escape hatch)
	Bypass bool
}

// AdjustOptions configures an Adjust call
type AdjustOptions struct {
	// Pinned categories are never rewritten. Rules that would rewrite them
	// are skipped and left for Validate to report.
	Pinned map[stack.CategoryID]bool
	Bypass bool
}

// Pin builds a pinned set from category IDs
func Pin(ids ...stack.CategoryID) map[stack.CategoryID]bool {
	out := make(map[stack.CategoryID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// Result is the outcome of Adjust
type Result struct {
	State   stack.State
	Changes []models.Change
}

// Changed reports whether Adjust rewrote anything
func (r Result) Changed() bool {
	return len(r.Changes) > 0
}

// Option is one selectable value with its availability
type Option struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Selected  bool   `json:"selected"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Engine evaluates states against a rule catalog
type Engine struct {
	catalog *rules.Catalog
}

// New creates an engine over a catalog. A nil catalog means the built-in rules.
func New(catalog *rules.Catalog) *Engine {
	if catalog == nil {
		catalog = rules.Default()
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the rule catalog the engine evaluates
func (e *Engine) Catalog() *rules.Catalog {
	return e.catalog
}
