package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/stackforge/internal/display"
	"github.com/harrison/stackforge/internal/snapshot"
	"github.com/harrison/stackforge/internal/stack"
)

// NewCheckCommand creates and returns the check subcommand
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check --category <category> [--value <value>]",
		Short: "Ask whether a value can be chosen for a category",
		Long: `Ask the availability oracle whether a value can be chosen for a category
given the rest of a configuration. The configuration is your defaults plus the
category flags, or the snapshot named by --from.

Prints "available" or the reason the value is disabled. Without --value every
option of the category is listed. The exit code is 0 either way.

Examples:
  stackforge check --category addons --value pwa --frontend nuxt
  stackforge check --category auth --from ./my-app`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	addStackFlags(cmd)
	cmd.Flags().String("category", "", "Category to query (required)")
	cmd.Flags().String("value", "", "Value to query; omit to list every option")
	cmd.Flags().String("from", "", "Read the configuration from a stackforge.yaml or project directory")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("category")
	id, ok := stack.ParseCategoryID(name)
	if !ok {
		return fmt.Errorf("unknown category %q", name)
	}
	value, _ := cmd.Flags().GetString("value")
	from, _ := cmd.Flags().GetString("from")

	var s stack.State
	if from != "" {
		if _, s, err = snapshot.Read(snapshotPath(from)); err != nil {
			return err
		}
	} else {
		s = cfg.DefaultState()
	}

	overrides, err := stackFlags(cmd)
	if err != nil {
		return err
	}
	for cid, sel := range overrides {
		s[cid] = sel
	}

	eng := newRuleEngine()
	out := cmd.OutOrStdout()

	if value == "" {
		fmt.Fprintf(out, "%s:\n", stack.MustLookup(id).Label)
		display.RenderOptions(out, eng.Options(s, id))
		return nil
	}

	if reason := eng.DisabledReason(s, id, value); reason != "" {
		fmt.Fprintln(out, reason)
		return nil
	}
	fmt.Fprintln(out, "available")
	return nil
}
