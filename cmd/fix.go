package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giact/awaitlint/internal/fixer"
	"github.com/giact/awaitlint/lint"
)

const defaultConfidenceThreshold = 0.75

var (
	dryRun              bool
	confidenceThreshold float64
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Automatically fix issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}
		ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
		defer cancel()

		// initialize the lint engine
		engine, err := lint.New(".", cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize lint engine: %w", err)
		}

		return runAutoFix(ctx, logger, engine, args, cmd.OutOrStdout(), dryRun, confidenceThreshold)
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().Float64Var(&confidenceThreshold, "confidence", defaultConfidenceThreshold, "Confidence threshold for auto-fixing (0.0 to 1.0)")
}

func runAutoFix(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, out io.Writer, dryRun bool, confidenceThreshold float64) error {
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", confidenceThreshold)
	}

	fix := fixer.New(dryRun, confidenceThreshold)
	fix.Out = out

	issues, procErr := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	issuesByFile, sortedFiles := groupByFile(issues)

	var errs []error
	for _, filename := range sortedFiles {
		res, err := fix.Fix(ctx, filename, issuesByFile[filename])
		if err != nil {
			logger.Error("error fixing issues", zap.String("file", filename), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Debug("fixed file",
			zap.String("file", filename),
			zap.Int("applied", res.Applied),
			zap.Int("skipped", res.Skipped))
	}
	return errors.Join(append(errs, procErr)...)
}
