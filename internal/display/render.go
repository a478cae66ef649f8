package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/stack"
)

// RenderViolations prints hard violations in red, then warnings in yellow.
// The text comes from engine.Format so it matches the web notes.
func RenderViolations(out io.Writer, violations []models.Violation) {
	red := color.New(color.FgRed)
	for _, v := range violations {
		if !v.IsHard() {
			continue
		}
		d := engine.Format(v)
		fmt.Fprintf(out, "%s %s\n", red.Sprint("✗"), red.Sprint(d.Title))
		fmt.Fprintf(out, "    %s\n", d.Message)
		for _, s := range d.Suggestions {
			fmt.Fprintf(out, "    → %s\n", s)
		}
	}
	for _, v := range violations {
		if v.IsHard() {
			continue
		}
		WarnDiagnostic(engine.Format(v), v.Categories).Display(out)
	}
}

// RenderChanges prints the adjustments the propagator applied
func RenderChanges(out io.Writer, changes []models.Change) {
	if len(changes) == 0 {
		return
	}
	noun := "adjustments"
	if len(changes) == 1 {
		noun = "adjustment"
	}
	fmt.Fprintf(out, "%s %d %s:\n", color.New(color.FgCyan).Sprint("ℹ"), len(changes), noun)
	for _, c := range changes {
		fmt.Fprintf(out, "    %s\n", engine.FormatChange(c))
	}
}

// RenderState prints a stack one category per line in catalog order
func RenderState(out io.Writer, s stack.State) {
	label := color.New(color.FgCyan)
	for _, c := range stack.Categories() {
		fmt.Fprintf(out, "  %s %s\n", label.Sprintf("%-15s", c.ID+":"), formatSelection(s.Get(c.ID)))
	}
}

// RenderOptions prints an oracle option list, greying out disabled entries
func RenderOptions(out io.Writer, options []engine.Option) {
	grey := color.New(color.FgHiBlack)
	for _, o := range options {
		marker := " "
		if o.Selected {
			marker = "*"
		}
		line := fmt.Sprintf("  %s %s", marker, o.Label)
		if !o.Available {
			fmt.Fprintln(out, grey.Sprintf("%s (%s)", line, o.Reason))
			continue
		}
		fmt.Fprintln(out, line)
	}
}

func formatSelection(sel stack.Selection) string {
	if len(sel) == 0 {
		return "[]"
	}
	if len(sel) == 1 {
		return sel[0]
	}
	return strings.Join(sel, ", ")
}
