package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giact/awaitlint/formatter"
	"github.com/giact/awaitlint/internal"
	tt "github.com/giact/awaitlint/internal/types"
	"github.com/giact/awaitlint/lint"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-lint files as they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()

		engine, err := lint.New(".", cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize lint engine: %w", err)
		}

		out := cmd.OutOrStdout()
		report := func(filename string, issues []tt.Issue) {
			if len(issues) == 0 {
				fmt.Fprintf(out, "no issues found in %s\n", filename)
				return
			}
			sourceCode, err := internal.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				return
			}
			fmt.Fprintln(out, formatter.GenerateFormattedIssue(issues, sourceCode))
		}

		watcher, err := internal.NewWatcher(engine, logger, report)
		if err != nil {
			return err
		}
		for _, dir := range args {
			if err := watcher.Add(dir); err != nil {
				return err
			}
		}

		logger.Info("watching for changes", zap.Strings("dirs", args))
		return watcher.Run(ctx)
	},
}
