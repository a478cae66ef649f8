package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/stackforge/internal/display"
	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/models"
	"github.com/harrison/stackforge/internal/snapshot"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [snapshot-file-or-project-dir...]",
		Short: "Check a stackforge.yaml against the compatibility rules",
		Long: `Load a project snapshot and report every incompatibility in it.

The argument may be a stackforge.yaml file or the project directory holding
one (default: the current directory). Several paths are checked in turn.
Warnings are printed but do not fail validation.

Exit code: 0 if supported, 1 if errors found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch len(args) {
			case 0:
				return validateSnapshot(cmd, ".", out)
			case 1:
				return validateSnapshot(cmd, args[0], out)
			}

			progress := display.NewProgressIndicator(out, "Validating snapshots", len(args))
			progress.Start()
			failed := 0
			for _, path := range args {
				progress.Step(snapshotPath(path))
				if err := validateSnapshot(cmd, path, out); err != nil {
					progress.Fail(err.Error())
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d snapshots failed validation", failed, len(args))
			}
			progress.Complete(fmt.Sprintf("%d snapshots supported", len(args)))
			return nil
		},
	}

	return cmd
}

// snapshotPath accepts a snapshot file or the directory containing one
func snapshotPath(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, snapshot.FileName)
	}
	return path
}

func validateSnapshot(cmd *cobra.Command, path string, out io.Writer) error {
	start := time.Now()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newRunLoggers(cmd, cfg, false)
	if err != nil {
		return err
	}
	defer log.Close()

	path = snapshotPath(path)
	eng := newRuleEngine()

	p, s, err := snapshot.Load(path, eng)
	var unsupported *snapshot.UnsupportedConfigurationError
	if errors.As(err, &unsupported) {
		for _, v := range unsupported.Violations {
			log.LogViolation(v)
		}
		display.RenderViolations(out, unsupported.Violations)
		hard := models.CountHard(unsupported.Violations)
		log.LogSummary(models.RunSummary{
			Command:        "validate",
			Project:        p.Name,
			HardViolations: hard,
			SoftViolations: len(unsupported.Violations) - hard,
			Duration:       time.Since(start),
		})
		return fmt.Errorf("%s: %d incompatibilities found", path, hard)
	}
	if err != nil {
		return err
	}

	warnings := eng.Validate(s, engine.ValidateOptions{Mode: engine.CollectAll})
	for _, v := range warnings {
		log.LogViolation(v)
	}
	display.RenderViolations(out, warnings)

	fmt.Fprintf(out, "✓ %s is a supported configuration\n", path)
	log.LogSummary(models.RunSummary{
		Command:        "validate",
		Project:        p.Name,
		SoftViolations: len(warnings),
		Duration:       time.Since(start),
	})
	return nil
}
