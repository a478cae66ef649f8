package prompt

import (
	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/rules"
	"github.com/harrison/stackforge/internal/stack"
)

// Wizard walks the categories in catalog order and asks for each one that
// is not pinned. Every answer is propagated before the next question, so
// later questions only offer values compatible with the earlier answers.
type Wizard struct {
	engine   *engine.Engine
	prompter Prompter
	pinned   map[stack.CategoryID]bool
}

// NewWizard creates a wizard. Pinned categories (set by flags) are never asked.
func NewWizard(eng *engine.Engine, p Prompter, pinned map[stack.CategoryID]bool) *Wizard {
	return &Wizard{engine: eng, prompter: p, pinned: pinned}
}

// Run asks the open questions starting from s and returns the adjusted state
// with every change propagation made along the way
func (w *Wizard) Run(s stack.State) (engine.Result, error) {
	state := s.Clone()
	pinned := make(map[stack.CategoryID]bool, len(w.pinned))
	for id, ok := range w.pinned {
		pinned[id] = ok
	}
	var changes []models.Change

	for _, c := range stack.Categories() {
		if pinned[c.ID] {
			continue
		}

		next, err := w.ask(state, c)
		if err != nil {
			return engine.Result{}, err
		}
		pinned[c.ID] = true

		res, err := w.engine.Adjust(next, engine.AdjustOptions{Pinned: pinned})
		if err != nil {
			return engine.Result{}, err
		}
		state = res.State
		changes = append(changes, res.Changes...)
	}

	return engine.Result{State: state, Changes: changes}, nil
}

func (w *Wizard) ask(s stack.State, c stack.Category) (stack.State, error) {
	options := w.engine.Options(s, c.ID)

	switch {
	case c.ID == stack.Frontend:
		return w.askFrontend(s, options)
	case c.IsSet():
		choices := available(options, func(v string) bool { return v != stack.None })
		if len(choices) == 0 {
			return s, nil
		}
		picked, err := w.prompter.MultiSelect(c.Label, choices, selectedValues(options))
		if err != nil {
			return nil, err
		}
		out := s.Clone()
		out.Set(c.ID, stack.Normalize(c.ID, stack.Of(picked...)))
		return out, nil
	default:
		choices := available(options, nil)
		picked, err := w.pickOne(c.Label, choices, s.Value(c.ID))
		if err != nil {
			return nil, err
		}
		return stack.Select(s, c.ID, picked), nil
	}
}

// askFrontend asks for the web and the native framework separately; the
// frontend set holds at most one of each
func (w *Wizard) askFrontend(s stack.State, options []engine.Option) (stack.State, error) {
	web, err := w.pickOne("Frontend (web)", frontendChoices(options, stack.IsWebFramework, "No web frontend"), s.Web())
	if err != nil {
		return nil, err
	}
	native, err := w.pickOne("Frontend (native)", frontendChoices(options, stack.IsNativeFramework, "No native app"), s.Native())
	if err != nil {
		return nil, err
	}

	var webSel, nativeSel []string
	if web != stack.None {
		webSel = []string{web}
	}
	if native != stack.None {
		nativeSel = []string{native}
	}

	out := s.Clone()
	out.Set(stack.Frontend, stack.MergeFrontend(webSel, nativeSel))
	return out, nil
}

// pickOne skips the prompt when there is nothing to choose
func (w *Wizard) pickOne(title string, choices []Choice, current string) (string, error) {
	switch len(choices) {
	case 0:
		return current, nil
	case 1:
		return choices[0].Value, nil
	}
	if !hasChoice(choices, current) {
		current = choices[0].Value
	}
	return w.prompter.Select(title, choices, current)
}

func available(options []engine.Option, keep func(string) bool) []Choice {
	var out []Choice
	for _, o := range options {
		if !o.Available || (keep != nil && !keep(o.Value)) {
			continue
		}
		out = append(out, Choice{Value: o.Value, Label: Label(o.Value)})
	}
	return out
}

func frontendChoices(options []engine.Option, kind func(string) bool, noneLabel string) []Choice {
	choices := available(options, kind)
	return append(choices, Choice{Value: stack.None, Label: noneLabel})
}

func selectedValues(options []engine.Option) []string {
	var out []string
	for _, o := range options {
		if o.Selected && o.Available && o.Value != stack.None {
			out = append(out, o.Value)
		}
	}
	return out
}

func hasChoice(choices []Choice, v string) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// Label returns the prompt label for a value
func Label(v string) string {
	if v == stack.None {
		return "None"
	}
	return rules.DisplayName(v)
}
