package cmd

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/stackforge/internal/display"
	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/prompt"
	"github.com/harrison/stackforge/internal/snapshot"
	"github.com/harrison/stackforge/internal/stack"
)

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// NewCreateCommand creates and returns the create subcommand
func NewCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <project-name>",
		Short: "Choose a stack for a new project and write its stackforge.yaml",
		Long: `Build a project configuration from your defaults and the category flags,
check it against the compatibility rules and write <dir>/<name>/stackforge.yaml.

Categories given as flags are pinned: they are never rewritten, and a
combination the rules reject fails with an explanation. Categories left open
are adjusted to fit the pinned ones and every adjustment is reported.

Examples:
  stackforge create my-app
  stackforge create my-app --frontend nuxt --api orpc
  stackforge create my-app --frontend next,native-unistyles --backend convex
  stackforge create my-app --interactive          # ask for every open category
  stackforge create my-app --dry-run --collect-all
  stackforge create my-app --yolo --backend convex --api trpc   # skip all rules

Exit code: 0 when written, 1 on incompatibilities`,
		Args: cobra.ExactArgs(1),
		RunE: runCreate,
	}

	addStackFlags(cmd)
	cmd.Flags().BoolP("interactive", "i", false, "Prompt for every category not given as a flag")
	cmd.Flags().Bool("yolo", false, "Skip every compatibility rule")
	cmd.Flags().Bool("collect-all", false, "Report every incompatibility instead of stopping at the first")
	cmd.Flags().Bool("dry-run", false, "Check the configuration without writing anything")
	cmd.Flags().String("dir", ".", "Parent directory of the project")
	cmd.Flags().Bool("git", true, "Initialize a git repository")
	cmd.Flags().Bool("install", true, "Install dependencies after generation")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	start := time.Now()
	name := args[0]
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("invalid project name %q: use letters, digits, '.', '_' and '-'", name)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	yolo, _ := cmd.Flags().GetBool("yolo")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	dir, _ := cmd.Flags().GetString("dir")
	git, _ := cmd.Flags().GetBool("git")
	install, _ := cmd.Flags().GetBool("install")

	if interactive && yolo {
		return errors.New("--interactive and --yolo cannot be combined")
	}

	overrides, err := stackFlags(cmd)
	if err != nil {
		return err
	}

	log, err := newRunLoggers(cmd, cfg, !dryRun)
	if err != nil {
		return err
	}
	defer log.Close()

	out := cmd.OutOrStdout()
	eng := newRuleEngine()

	s := cfg.DefaultState()
	pinned := make(map[stack.CategoryID]bool, len(overrides))
	for id, sel := range overrides {
		s[id] = sel
		pinned[id] = true
	}
	log.LogDebug(fmt.Sprintf("starting from %s", s))

	var res engine.Result
	if interactive {
		if !stdinIsTTY() {
			return errors.New("--interactive requires a terminal on stdin")
		}
		res, err = prompt.NewWizard(eng, newPrompter(), pinned).Run(s)
		if errors.Is(err, prompt.ErrAborted) {
			return errors.New("create cancelled")
		}
	} else {
		res, err = eng.Adjust(s, engine.AdjustOptions{Pinned: pinned, Bypass: yolo})
	}
	if err != nil {
		return err
	}

	for _, ch := range res.Changes {
		log.LogChange(ch)
	}
	display.RenderChanges(out, res.Changes)

	violations := eng.Validate(res.State, engine.ValidateOptions{Mode: validateMode(cmd, cfg), Bypass: yolo})
	for _, v := range violations {
		log.LogViolation(v)
	}
	display.RenderViolations(out, violations)

	summary := models.RunSummary{
		Command:        "create",
		Project:        name,
		Changes:        len(res.Changes),
		HardViolations: models.CountHard(violations),
		SoftViolations: len(violations) - models.CountHard(violations),
	}
	if summary.HardViolations > 0 {
		summary.Duration = time.Since(start)
		log.LogSummary(summary)
		return &engine.ValidationError{Violations: violations}
	}

	fmt.Fprintf(out, "\n%s:\n", name)
	display.RenderState(out, res.State)

	if dryRun {
		fmt.Fprintln(out, "\nDry run: nothing written")
	} else {
		path := snapshot.Path(dir, name)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; use stackforge add to extend it", path)
		}
		project := snapshot.New(name, res.State, res.Changes, git, install, time.Now())
		if err := snapshot.Save(path, project); err != nil {
			return err
		}
		log.LogProject(project)
		summary.Output = path
		fmt.Fprintf(out, "\n✓ Wrote %s\n", path)
	}

	summary.Duration = time.Since(start)
	log.LogSummary(summary)
	return nil
}
