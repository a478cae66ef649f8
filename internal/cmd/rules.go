package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/stackforge/internal/display"
)

// NewRulesCommand creates and returns the rules subcommand
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the compatibility rule catalog",
		Long: `Print every compatibility rule grouped by the category it rewrites, in
evaluation order. Markdown by default; --html renders the same document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := newRuleEngine().Catalog()
			asHTML, _ := cmd.Flags().GetBool("html")
			if !asHTML {
				fmt.Fprint(cmd.OutOrStdout(), display.RulesMarkdown(catalog))
				return nil
			}
			html, err := display.RulesHTML(catalog)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().Bool("html", false, "Render the catalog as HTML")

	return cmd
}
