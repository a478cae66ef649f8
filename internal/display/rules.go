package display

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrison/stackforge/internal/rules"
	"github.com/harrison/stackforge/internal/stack"
)

// RulesMarkdown documents the catalog as markdown: one section per written
// category, one table row per rule, in evaluation order
func RulesMarkdown(catalog *rules.Catalog) string {
	var b strings.Builder
	b.WriteString("# Compatibility rules\n\n")
	fmt.Fprintf(&b, "%d rules over %d categories. Rules are evaluated in the order below.\n", catalog.Len(), stack.Count())

	for _, c := range stack.Categories() {
		rs := catalog.Writing(c.ID)
		if len(rs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s (`%s`)\n\n", c.Label, c.ID)
		b.WriteString("| Rule | Kind | Severity | Reads | Autofix |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, r := range rs {
			autofix := "no"
			if r.HasAutofix() {
				autofix = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %s |\n",
				r.ID, r.Kind.String(), r.Severity, strings.Join(r.Categories(), ", "), autofix)
		}
	}
	return b.String()
}

// RulesHTML renders RulesMarkdown to HTML with GitHub-flavoured tables
func RulesHTML(catalog *rules.Catalog) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(RulesMarkdown(catalog)), &buf); err != nil {
		return "", fmt.Errorf("failed to render rules: %w", err)
	}
	return buf.String(), nil
}
