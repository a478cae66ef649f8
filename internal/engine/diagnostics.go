package engine

import (
	"fmt"
	"strings"

	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/rules"
)

// Diagnostic is the rendered form of a violation, shared by terminal output
// and web notes
type Diagnostic struct {
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// String renders the diagnostic as plain text
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Title)
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	for _, s := range d.Suggestions {
		sb.WriteString("\n  → ")
		sb.WriteString(s)
	}
	return sb.String()
}

// Format turns a violation into a diagnostic
func Format(v models.Violation) Diagnostic {
	title := fmt.Sprintf("%s %s", capitalize(v.Kind.String()), v.Category())
	if v.Severity == models.SeveritySoft {
		title = "Warning: " + title
	}
	return Diagnostic{
		Title:       strings.TrimSpace(title),
		Message:     v.Message,
		Suggestions: append([]string(nil), v.Suggestions...),
	}
}

// FormatAll formats a list of violations in order
func FormatAll(vs []models.Violation) []Diagnostic {
	out := make([]Diagnostic, len(vs))
	for i, v := range vs {
		out[i] = Format(v)
	}
	return out
}

// FormatChange describes one propagator rewrite in a single line
func FormatChange(c models.Change) string {
	return fmt.Sprintf("%s: %s → %s (%s)", c.Category, valueNames(c.Old), valueNames(c.New), c.Reason)
}

func valueNames(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = rules.DisplayName(v)
	}
	if len(names) == 1 {
		return names[0]
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
