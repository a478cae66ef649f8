package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/stackforge/internal/engine"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title       string   // Main warning title
	Message     string   // Detailed explanation (optional)
	Categories  []string // Related categories (optional)
	Suggestions []string // Actions to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Categories) > 0 {
		b.WriteString("    ")
		if len(w.Categories) == 1 {
			b.WriteString("Affected category: ")
		} else {
			b.WriteString("Affected categories: ")
		}
		b.WriteString(strings.Join(w.Categories, ", "))
		b.WriteString("\n")
	}

	if len(w.Suggestions) > 0 {
		b.WriteString("    Suggestion:\n")
		for _, s := range w.Suggestions {
			b.WriteString("    ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	fmt.Fprint(out, color.New(color.FgYellow).Sprint(b.String()))
}

// WarnDiagnostic turns a soft-violation diagnostic into a warning
func WarnDiagnostic(d engine.Diagnostic, categories []string) Warning {
	return Warning{
		Title:       strings.TrimPrefix(d.Title, "Warning: "),
		Message:     d.Message,
		Categories:  categories,
		Suggestions: d.Suggestions,
	}
}
