// Package prompt asks the user for every category the command line left
// open, offering only the values the availability oracle allows.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the user cancels a prompt
var ErrAborted = errors.New("prompt aborted")

// Choice is one selectable entry
type Choice struct {
	Value string
	Label string
}

// Prompter asks single and multiple choice questions
type Prompter interface {
	Select(title string, choices []Choice, current string) (string, error)
	MultiSelect(title string, choices []Choice, current []string) ([]string, error)
}

// IsInteractive reports whether f is a terminal a prompt can run on
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// HuhPrompter prompts on the terminal with charmbracelet/huh
type HuhPrompter struct {
	// Accessible switches huh to plain line-based prompts (screen readers)
	Accessible bool
}

// Select implements Prompter
func (p *HuhPrompter) Select(title string, choices []Choice, current string) (string, error) {
	value := current
	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c.Label, c.Value).Selected(c.Value == current)
	}

	field := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(&value)

	if err := p.run(field); err != nil {
		return "", err
	}
	return value, nil
}

// MultiSelect implements Prompter
func (p *HuhPrompter) MultiSelect(title string, choices []Choice, current []string) ([]string, error) {
	selected := make(map[string]bool, len(current))
	for _, v := range current {
		selected[v] = true
	}

	values := append([]string(nil), current...)
	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c.Label, c.Value).Selected(selected[c.Value])
	}

	field := huh.NewMultiSelect[string]().
		Title(title).
		Options(options...).
		Value(&values)

	if err := p.run(field); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *HuhPrompter) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithAccessible(p.Accessible)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}
