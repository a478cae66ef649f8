package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for stackforge
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackforge",
		Short: "Compose compatible full-stack project configurations",
		Long: `Stackforge picks a full-stack project configuration (frontend, backend,
runtime, database, ORM, API layer, auth, addons, deployment and tooling)
and checks it against a catalog of compatibility rules.

The CLI is strict: an incompatible combination given on the command line is
rejected with an explanation. Categories you leave open are filled from your
defaults and adjusted to fit the ones you pinned. The web configurator
(stackforge serve) applies the same rules in soft mode, rewriting dependent
choices as you click.

Configuration is loaded from .stackforge/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .stackforge/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for run logs")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Shortcut for --log-level debug")

	cmd.AddCommand(NewCreateCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewAddCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewRulesCommand())
	cmd.AddCommand(NewServeCommand())

	return cmd
}
