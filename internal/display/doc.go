// Package display renders stackforge output for the terminal.
//
// It centralizes how violations, adjustments and warnings look on screen so
// every command prints them the same way, and it renders the rule catalog as
// markdown or HTML for the rules command.
//
// # Violations and changes
//
//	display.RenderChanges(os.Stdout, result.Changes)
//	display.RenderViolations(os.Stderr, violations)
//
// Hard violations print in red, warnings in yellow. Colors follow
// fatih/color, which turns them off for non-TTY writers and NO_COLOR.
//
// # Warnings
//
//	warning := display.Warning{
//	    Title:       "Snapshot Outdated",
//	    Message:     "stackforge.yaml was written by an older version",
//	    Suggestions: []string{"Run stackforge add to rewrite it"},
//	}
//	warning.Display(os.Stderr)
//
// # Progress
//
//	progress := display.NewProgressIndicator(os.Stdout, "Validating snapshots", len(paths))
//	progress.Start()
//	progress.Step(path) // [1/3] path
//	progress.Complete("3 snapshots supported")
//
// # Rule catalog
//
//	md := display.RulesMarkdown(catalog)
//	html, err := display.RulesHTML(catalog)
//
// All functions accept io.Writer interfaces for testability.
package display
