package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/stackforge/internal/display"
	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/snapshot"
	"github.com/harrison/stackforge/internal/stack"
)

// NewAddCommand creates and returns the add subcommand
func NewAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add addons or examples to an existing project",
		Long: `Add addons or examples to the project whose stackforge.yaml is in --dir.

The existing snapshot must still be a supported configuration. The requested
values are kept as given; other categories are adjusted around them, and a
request the rules reject leaves the snapshot untouched.

Examples:
  stackforge add --addons biome,husky
  stackforge add --examples todo --dir ./my-app`,
		Args: cobra.NoArgs,
		RunE: runAdd,
	}

	cmd.Flags().StringSlice(flagName(stack.Addons), nil, "Addons to add")
	cmd.Flags().StringSlice(flagName(stack.Examples), nil, "Examples to add")
	cmd.Flags().String("dir", ".", "Project directory containing stackforge.yaml")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	additions := snapshot.Additions{}
	for _, id := range []stack.CategoryID{stack.Addons, stack.Examples} {
		values, _ := cmd.Flags().GetStringSlice(flagName(id))
		if len(values) > 0 {
			additions[id] = values
		}
	}
	if len(additions) == 0 {
		return errors.New("nothing to add: pass --addons or --examples")
	}

	log, err := newRunLoggers(cmd, cfg, true)
	if err != nil {
		return err
	}
	defer log.Close()

	out := cmd.OutOrStdout()
	dir, _ := cmd.Flags().GetString("dir")
	path := snapshotPath(dir)
	summary := models.RunSummary{Command: "add"}

	res, err := snapshot.Add(path, additions, newRuleEngine(), time.Now())
	if err != nil {
		var violations []models.Violation
		var verr *engine.ValidationError
		var unsupported *snapshot.UnsupportedConfigurationError
		switch {
		case errors.As(err, &verr):
			violations = verr.Violations
		case errors.As(err, &unsupported):
			violations = unsupported.Violations
		}
		for _, v := range violations {
			log.LogViolation(v)
		}
		display.RenderViolations(out, violations)
		summary.HardViolations = models.CountHard(violations)
		summary.Duration = time.Since(start)
		log.LogSummary(summary)
		return err
	}

	for _, ch := range res.Changes {
		log.LogChange(ch)
	}
	display.RenderChanges(out, res.Changes)

	if len(res.Added) == 0 {
		fmt.Fprintln(out, "Nothing new: every requested value was already selected")
	}
	for _, id := range res.Added {
		fmt.Fprintf(out, "✓ %s: %s\n", stack.MustLookup(id).Label, res.State.Get(id))
	}
	log.LogProject(res.Project)

	summary.Project = res.Project.Name
	summary.Changes = len(res.Changes)
	summary.Output = path
	summary.Duration = time.Since(start)
	log.LogSummary(summary)
	return nil
}
