package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/giact/awaitlint/internal"
	"github.com/giact/awaitlint/lint"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := lint.New(".", cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize lint engine: %w", err)
		}
		return printRules(cmd.OutOrStdout(), engine.Rules())
	},
}

func printRules(out io.Writer, rules []internal.LintRule) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tSEVERITY\tCATEGORY\tDESCRIPTION")
	for _, r := range rules {
		meta := r.Meta()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name(), r.Severity(), meta.Category, meta.Description)
	}
	return w.Flush()
}
