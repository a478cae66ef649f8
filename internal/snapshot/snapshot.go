// Package snapshot reads and writes stackforge.yaml, the configuration
// snapshot stored at the root of every generated project.
//
// A snapshot that loads is always in-domain. Whether it is also compatible
// is checked separately by Load, which runs the validator over it.
package snapshot

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/filelock"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// FileName is the snapshot file name inside a project directory
const FileName = "stackforge.yaml"

// document is the on-disk shape of a snapshot
type document struct {
	Version     int                      `yaml:"version"`
	ProjectName string                   `yaml:"project_name"`
	CreatedAt   time.Time                `yaml:"created_at"`
	UpdatedAt   *time.Time               `yaml:"updated_at,omitempty"`
	Stack       map[string]models.Values `yaml:"stack"`
	Git         bool                     `yaml:"git"`
	Install     bool                     `yaml:"install"`
	Adjustments []models.Change          `yaml:"adjustments,omitempty"`
}

// Path returns the snapshot path of project name under dir
func Path(dir, name string) string {
	return filepath.Join(dir, name, FileName)
}

// Encode renders a project as snapshot YAML. Categories are written in
// catalog order.
func Encode(p *models.Project) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("cannot encode snapshot: %w", err)
	}

	doc := document{
		Version:     p.Version,
		ProjectName: p.Name,
		CreatedAt:   p.CreatedAt.UTC(),
		Stack:       models.FromStack(p.Stack),
		Git:         p.Git,
		Install:     p.Install,
		Adjustments: p.Changes,
	}
	if doc.Version == 0 {
		doc.Version = models.SnapshotVersion
	}
	if !p.UpdatedAt.IsZero() {
		u := p.UpdatedAt.UTC()
		doc.UpdatedAt = &u
	}

	node := &yaml.Node{}
	if err := node.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	orderStackKeys(node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// orderStackKeys sorts the stack mapping by catalog order. yaml.v3 sorts map
// keys alphabetically.
func orderStackKeys(doc *yaml.Node) {
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "stack" {
			continue
		}
		m := doc.Content[i+1]
		type pair struct{ k, v *yaml.Node }
		pairs := make([]pair, 0, len(m.Content)/2)
		for j := 0; j+1 < len(m.Content); j += 2 {
			pairs = append(pairs, pair{m.Content[j], m.Content[j+1]})
		}
		sort.SliceStable(pairs, func(a, b int) bool {
			return stack.Order(stack.CategoryID(pairs[a].k.Value)) < stack.Order(stack.CategoryID(pairs[b].k.Value))
		})
		m.Content = m.Content[:0]
		for _, p := range pairs {
			m.Content = append(m.Content, p.k, p.v)
		}
	}
}

// Decode parses snapshot YAML. source names the file in errors.
// Unknown categories, out-of-domain values and several values for a
// single-value category are reported together as a *ConfigParseError.
func Decode(data []byte, source string) (*models.Project, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigParseError{File: source, Err: err}
	}

	var problems []string
	keys := make([]string, 0, len(doc.Stack))
	for k := range doc.Stack {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		id, ok := stack.ParseCategoryID(k)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown category %q", k))
			continue
		}
		c := stack.MustLookup(id)
		values := doc.Stack[k]
		if !c.IsSet() && len(values) > 1 {
			problems = append(problems, fmt.Sprintf("%s takes exactly one value, got %d", id, len(values)))
		}
		for _, v := range values {
			if !c.InDomain(v) {
				problems = append(problems, fmt.Sprintf("%q is not a valid %s value", v, id))
			}
		}
	}
	if len(problems) > 0 {
		return nil, &ConfigParseError{File: source, Problems: problems}
	}

	p := &models.Project{
		Version:    doc.Version,
		Name:       doc.ProjectName,
		CreatedAt:  doc.CreatedAt,
		Stack:      models.ToStack(doc.Stack),
		Git:        doc.Git,
		Install:    doc.Install,
		Changes:    doc.Adjustments,
		SourceFile: source,
	}
	if doc.UpdatedAt != nil {
		p.UpdatedAt = *doc.UpdatedAt
	}
	if err := p.Validate(); err != nil {
		return nil, &ConfigParseError{File: source, Err: err}
	}

	// canonical keys and shapes
	s, err := State(p)
	if err != nil {
		return nil, &ConfigParseError{File: source, Err: err}
	}
	p.Stack = s.ToMap()
	return p, nil
}

// State converts the project stack to an engine state. Missing categories
// take their defaults.
func State(p *models.Project) (stack.State, error) {
	return stack.FromMap(p.Stack)
}

// Read decodes a snapshot without checking it against the rules
func Read(path string) (*models.Project, stack.State, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := Decode(data, path)
	if err != nil {
		return nil, nil, err
	}
	s, err := State(p)
	if err != nil {
		return nil, nil, &ConfigParseError{File: path, Err: err}
	}
	return p, s, nil
}

// Load reads a snapshot and checks it against the rules. A snapshot the
// rules reject returns the project along with an *UnsupportedConfigurationError.
func Load(path string, eng *engine.Engine) (*models.Project, stack.State, error) {
	p, s, err := Read(path)
	if err != nil {
		return nil, nil, err
	}

	violations := eng.Validate(s, engine.ValidateOptions{Mode: engine.CollectAll})
	if models.CountHard(violations) > 0 {
		return p, s, &UnsupportedConfigurationError{File: path, Violations: violations}
	}
	return p, s, nil
}

// Save writes a snapshot under the file lock, replacing any existing file
func Save(path string, p *models.Project) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// New builds a fresh project snapshot from an adjusted state
func New(name string, s stack.State, changes []models.Change, git, install bool, now time.Time) *models.Project {
	return &models.Project{
		Version:   models.SnapshotVersion,
		Name:      name,
		CreatedAt: now.UTC().Truncate(time.Second),
		Stack:     s.ToMap(),
		Git:       git,
		Install:   install,
		Changes:   changes,
	}
}
