package snapshot

import (
	"fmt"
	"os"
	"time"

	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/filelock"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// Additions maps set categories (addons, examples) to the values to add
type Additions map[stack.CategoryID][]string

// AddResult is the outcome of a successful Add
type AddResult struct {
	Project *models.Project
	State   stack.State
	Changes []models.Change
	Added   []stack.CategoryID // categories that gained values, catalog order
}

// Merge adds values to set categories of s and returns the new state and the
// categories that actually gained a value. Single-value categories cannot be
// added to.
func Merge(s stack.State, additions Additions) (stack.State, []stack.CategoryID, error) {
	for id := range additions {
		if _, ok := stack.Lookup(id); !ok {
			return nil, nil, fmt.Errorf("unknown category %q", id)
		}
	}

	out := s.Clone()
	var touched []stack.CategoryID

	for _, id := range stack.IDs() {
		values, ok := additions[id]
		if !ok || len(values) == 0 {
			continue
		}
		c := stack.MustLookup(id)
		if !c.IsSet() {
			return nil, nil, fmt.Errorf("cannot add to %s: it holds a single value", id)
		}
		before := out.Get(id)
		for _, v := range values {
			if v == stack.None {
				continue
			}
			if !c.InDomain(v) {
				return nil, nil, fmt.Errorf("%q is not a valid %s value", v, id)
			}
			out = stack.Select(out, id, v)
		}
		if !out.Get(id).Equal(before) {
			touched = append(touched, id)
		}
	}

	return out, touched, nil
}

// Add merges additions into the snapshot at path under the file lock.
//
// The existing snapshot must validate, otherwise *UnsupportedConfigurationError.
// The merged categories are pinned during adjustment so the requested values
// survive; a request the rules reject fails with *engine.ValidationError and
// leaves the file untouched.
func Add(path string, additions Additions, eng *engine.Engine, now time.Time) (*AddResult, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found at %s", FileName, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var result *AddResult
	err := filelock.LockAndUpdate(path, func(current []byte) ([]byte, error) {
		p, err := Decode(current, path)
		if err != nil {
			return nil, err
		}
		s, err := State(p)
		if err != nil {
			return nil, &ConfigParseError{File: path, Err: err}
		}

		if violations := eng.Validate(s, engine.ValidateOptions{Mode: engine.CollectAll}); models.CountHard(violations) > 0 {
			return nil, &UnsupportedConfigurationError{File: path, Violations: violations}
		}

		merged, touched, err := Merge(s, additions)
		if err != nil {
			return nil, err
		}

		adjusted, err := eng.Adjust(merged, engine.AdjustOptions{Pinned: engine.Pin(touched...)})
		if err != nil {
			return nil, err
		}
		if err := eng.Check(adjusted.State, engine.ValidateOptions{Mode: engine.CollectAll}); err != nil {
			return nil, err
		}

		p.Stack = adjusted.State.ToMap()
		p.UpdatedAt = now.UTC().Truncate(time.Second)
		p.Changes = append(p.Changes, adjusted.Changes...)

		data, err := Encode(p)
		if err != nil {
			return nil, err
		}
		result = &AddResult{Project: p, State: adjusted.State, Changes: adjusted.Changes, Added: touched}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found at %s", FileName, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
