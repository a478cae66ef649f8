package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/stack"
)

// scriptedPrompter answers by title and records what it was asked
type scriptedPrompter struct {
	answers map[string][]string
	asked   []string
	offered map[string][]Choice
	current map[string][]string
	err     error
}

func newScripted(answers map[string][]string) *scriptedPrompter {
	return &scriptedPrompter{
		answers: answers,
		offered: map[string][]Choice{},
		current: map[string][]string{},
	}
}

func (p *scriptedPrompter) record(title string, choices []Choice, current []string) ([]string, error) {
	p.asked = append(p.asked, title)
	p.offered[title] = choices
	p.current[title] = current
	if p.err != nil {
		return nil, p.err
	}
	answer, ok := p.answers[title]
	if !ok {
		return current, nil
	}
	return answer, nil
}

func (p *scriptedPrompter) Select(title string, choices []Choice, current string) (string, error) {
	answer, err := p.record(title, choices, []string{current})
	if err != nil {
		return "", err
	}
	return answer[0], nil
}

func (p *scriptedPrompter) MultiSelect(title string, choices []Choice, current []string) ([]string, error) {
	return p.record(title, choices, current)
}

func values(choices []Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Value
	}
	return out
}

// pinAllBut pins every category except the given ones
func pinAllBut(open ...stack.CategoryID) map[stack.CategoryID]bool {
	pinned := engine.Pin(stack.IDs()...)
	for _, id := range open {
		delete(pinned, id)
	}
	return pinned
}

func TestWizardPropagatesBetweenQuestions(t *testing.T) {
	eng := engine.New(nil)
	p := newScripted(map[string][]string{"Backend": {"convex"}})

	w := NewWizard(eng, p, pinAllBut(stack.Backend, stack.Runtime, stack.Database, stack.ORM, stack.DBSetup, stack.API))
	res, err := w.Run(stack.Defaults())
	require.NoError(t, err)

	// Once convex is chosen every downstream category has a single option left
	assert.Equal(t, []string{"Backend"}, p.asked)
	assert.Equal(t, []string{"hono"}, p.current["Backend"])
	assert.Contains(t, values(p.offered["Backend"]), "convex")

	assert.Equal(t, "convex", res.State.Value(stack.Backend))
	for _, id := range []stack.CategoryID{stack.Runtime, stack.Database, stack.ORM, stack.API} {
		assert.Equal(t, stack.None, res.State.Value(id), "%s", id)
	}
	assert.NotEmpty(t, res.Changes)
	assert.True(t, eng.IsValid(res.State))
}

func TestWizardOffersOnlyAvailableAddons(t *testing.T) {
	eng := engine.New(nil)
	start, err := eng.Adjust(stack.Select(stack.Defaults(), stack.Frontend, stack.Nuxt), engine.AdjustOptions{})
	require.NoError(t, err)

	p := newScripted(map[string][]string{"Addons": {"tauri", "biome"}})
	res, err := NewWizard(eng, p, pinAllBut(stack.Addons)).Run(start.State)
	require.NoError(t, err)

	offered := values(p.offered["Addons"])
	assert.NotContains(t, offered, "pwa", "PWA is not supported with Nuxt")
	assert.Contains(t, offered, "tauri")
	assert.NotContains(t, offered, stack.None)
	assert.Equal(t, []string{"turborepo"}, p.current["Addons"])

	assert.Equal(t, stack.Of("tauri", "biome"), res.State.Get(stack.Addons))
}

func TestWizardFrontendAskedAsWebAndNative(t *testing.T) {
	eng := engine.New(nil)
	p := newScripted(map[string][]string{
		"Frontend (web)":    {"svelte"},
		"Frontend (native)": {"native-unistyles"},
	})

	res, err := NewWizard(eng, p, pinAllBut(stack.Frontend)).Run(stack.Defaults())
	require.NoError(t, err)

	assert.Equal(t, []string{"Frontend (web)", "Frontend (native)"}, p.asked)
	assert.Equal(t, []string{"tanstack-router"}, p.current["Frontend (web)"])
	assert.Equal(t, []string{stack.None}, p.current["Frontend (native)"])
	assert.Equal(t, stack.Of("svelte", "native-unistyles"), res.State.Get(stack.Frontend))
}

func TestWizardSkipsPinned(t *testing.T) {
	p := newScripted(nil)
	res, err := NewWizard(engine.New(nil), p, pinAllBut()).Run(stack.Defaults())
	require.NoError(t, err)
	assert.Empty(t, p.asked)
	assert.True(t, res.State.Equal(stack.Defaults()))
	assert.Empty(t, res.Changes)
}

func TestWizardAbort(t *testing.T) {
	p := newScripted(nil)
	p.err = ErrAborted

	_, err := NewWizard(engine.New(nil), p, pinAllBut(stack.Backend)).Run(stack.Defaults())
	assert.True(t, errors.Is(err, ErrAborted))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "None", Label(stack.None))
	assert.Equal(t, "tRPC", Label("trpc"))
	assert.Equal(t, "unknown-thing", Label("unknown-thing"))
}

func TestIsInteractive(t *testing.T) {
	assert.False(t, IsInteractive(nil))

	f, err := os.Create(filepath.Join(t.TempDir(), "not-a-tty"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsInteractive(f))
}
