package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func writeSnapshot(t *testing.T, dir string, s stack.State) string {
	t.Helper()
	path := Path(dir, "my-app")
	require.NoError(t, Save(path, New("my-app", s, nil, true, false, fixedNow)))
	return path
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := stack.Defaults()
	s.Set(stack.Frontend, stack.Of("svelte", "native-unistyles"))
	p := New("my-app", s, []models.Change{{
		Category: "api", Old: []string{"trpc"}, New: []string{"orpc"},
		Reason: "tRPC API requires React-based frontends.", RuleID: "trpc-requires-react",
	}}, true, true, fixedNow)

	data, err := Encode(p)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "project_name: my-app\n")
	assert.Contains(t, text, "  backend: hono\n", "single values are written as scalars")
	assert.Contains(t, text, "  examples: []\n")
	assert.Less(t, strings.Index(text, "frontend:"), strings.Index(text, "backend:"), "stack keys follow catalog order")
	assert.Less(t, strings.Index(text, "database:"), strings.Index(text, "orm:"))
	assert.NotContains(t, text, "updated_at")

	got, err := Decode(data, "mem")
	require.NoError(t, err)
	assert.Equal(t, "mem", got.SourceFile)
	assert.True(t, got.CreatedAt.Equal(fixedNow))
	if diff := cmp.Diff(p.Stack, got.Stack); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, p.Changes, got.Changes)
	assert.True(t, got.Git)
	assert.True(t, got.Install)
}

func TestDecodeFillsMissingCategories(t *testing.T) {
	data := []byte(`version: 1
project_name: tiny
created_at: 2026-01-02T03:04:05Z
stack:
  backend: express
  db_setup: none
`)
	p, err := Decode(data, "tiny.yaml")
	require.NoError(t, err)

	s, err := State(p)
	require.NoError(t, err)
	assert.Equal(t, "express", s.Value(stack.Backend))
	assert.Equal(t, "bun", s.Value(stack.Runtime), "missing categories take defaults")
	assert.Len(t, p.Stack, stack.Count())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"malformed", "stack: [unclosed", "invalid snapshot"},
		{"unknown category", "project_name: x\nstack:\n  colour: red\n", `unknown category "colour"`},
		{"value outside domain", "project_name: x\nstack:\n  backend: rails\n", `"rails" is not a valid backend value`},
		{"two runtimes", "project_name: x\nstack:\n  runtime: [bun, node]\n", "runtime takes exactly one value"},
		{"no name", "stack:\n  backend: hono\n", "project name is required"},
		{"no stack", "project_name: x\n", "project stack is required"},
		{"newer version", "version: 99\nproject_name: x\nstack:\n  backend: hono\n", "newer version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.yaml), "bad.yaml")
			require.Error(t, err)
			assert.True(t, IsConfigParseError(err), "want ConfigParseError, got %T", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, stack.Defaults())
	assert.Equal(t, filepath.Join(dir, "my-app", "stackforge.yaml"), path)

	p, s, err := Load(path, engine.New(nil))
	require.NoError(t, err)
	assert.Equal(t, "my-app", p.Name)
	assert.True(t, s.Equal(stack.Defaults()))
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope", FileName), engine.New(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stackforge.yaml found")
}

func TestLoadUnsupportedConfiguration(t *testing.T) {
	s := stack.Defaults()
	s.Set(stack.Auth, stack.Of("clerk"))
	path := writeSnapshot(t, t.TempDir(), s)

	p, _, err := Load(path, engine.New(nil))
	require.Error(t, err)
	assert.True(t, IsUnsupportedConfiguration(err))
	assert.False(t, IsConfigParseError(err))
	assert.NotNil(t, p, "the project is still returned for diagnostics")
	assert.Contains(t, err.Error(), "Clerk authentication is only available with the Convex backend.")
}

func TestMerge(t *testing.T) {
	s := stack.Defaults()

	merged, touched, err := Merge(s, Additions{
		stack.Addons:   {"biome", "turborepo", "pwa"},
		stack.Examples: {"none"},
	})
	require.NoError(t, err)
	assert.Equal(t, stack.Of("pwa", "biome", "turborepo"), merged.Get(stack.Addons))
	assert.Equal(t, []stack.CategoryID{stack.Addons}, touched, "examples did not change")
	assert.Equal(t, stack.Of("turborepo"), s.Get(stack.Addons), "input not mutated")

	_, _, err = Merge(s, Additions{stack.Backend: {"express"}})
	assert.ErrorContains(t, err, "holds a single value")

	_, _, err = Merge(s, Additions{"colour": {"red"}})
	assert.ErrorContains(t, err, "unknown category")

	_, _, err = Merge(s, Additions{stack.Addons: {"eslint"}})
	assert.ErrorContains(t, err, `"eslint" is not a valid addons value`)
}

func TestAdd(t *testing.T) {
	eng := engine.New(nil)
	path := writeSnapshot(t, t.TempDir(), stack.Defaults())

	res, err := Add(path, Additions{stack.Addons: {"pwa"}, stack.Examples: {"todo"}}, eng, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []stack.CategoryID{stack.Addons, stack.Examples}, res.Added)
	assert.True(t, res.State.Has(stack.Addons, "pwa"))
	assert.True(t, res.State.Has(stack.Examples, "todo"))

	p, _, err := Load(path, eng)
	require.NoError(t, err)
	assert.Equal(t, []string{"pwa", "turborepo"}, p.Stack["addons"])
	assert.True(t, p.UpdatedAt.Equal(fixedNow.Add(time.Hour)))
	assert.True(t, p.CreatedAt.Equal(fixedNow), "created_at is preserved")
}

func TestAddRejectedLeavesFileUntouched(t *testing.T) {
	eng := engine.New(nil)
	res, err := eng.Adjust(stack.Select(stack.Defaults(), stack.Frontend, stack.Nuxt), engine.AdjustOptions{})
	require.NoError(t, err)
	path := writeSnapshot(t, t.TempDir(), res.State)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = Add(path, Additions{stack.Addons: {"pwa"}}, eng, fixedNow)
	require.Error(t, err)
	assert.True(t, engine.IsValidationError(err), "got %T: %v", err, err)
	assert.Contains(t, err.Error(), "The PWA addon is not supported with Nuxt.")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestAddRefusesUnsupportedSnapshot(t *testing.T) {
	s := stack.Defaults()
	s.Set(stack.Auth, stack.Of("clerk"))
	path := writeSnapshot(t, t.TempDir(), s)

	_, err := Add(path, Additions{stack.Addons: {"biome"}}, engine.New(nil), fixedNow)
	require.Error(t, err)
	assert.True(t, IsUnsupportedConfiguration(err))
}

func TestAddMissingSnapshot(t *testing.T) {
	_, err := Add(filepath.Join(t.TempDir(), FileName), Additions{stack.Addons: {"biome"}}, engine.New(nil), fixedNow)
	assert.ErrorContains(t, err, "no stackforge.yaml found")
}
