package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/giact/awaitlint/formatter"
	"github.com/giact/awaitlint/internal"
	"github.com/giact/awaitlint/internal/syntax"
	tt "github.com/giact/awaitlint/internal/types"
	"github.com/giact/awaitlint/lint"
)

const stdinArg = "-"

var (
	ignoreRules    string
	ignorePaths    string
	lintJsonOutput bool
	outPath        string
	useCache       bool
	cacheDir       string
	langName       string
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the normal lint process",
	Long: `Lint JavaScript and TypeScript files or directories.
Use "-" as the only path to read source from standard input; --lang selects the grammar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		ctx, cancel := context.WithTimeout(commandContext(cmd), timeout)
		defer cancel()

		engine, err := lint.New(".", cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize lint engine: %w", err)
		}
		if err := applyIgnores(engine, ignoreRules, ignorePaths); err != nil {
			return err
		}

		opts := lintOptions{
			isJson:     lintJsonOutput,
			jsonOutput: outPath,
			lang:       langName,
		}
		if useCache {
			cache, err := openCache(cacheDir, cfgFile)
			if err != nil {
				return err
			}
			opts.processor = lint.CachedProcessor(cache, lint.ProcessFile)
		}

		return runNormalLintProcess(ctx, logger, engine, args, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of glob patterns to ignore")
	lintCmd.Flags().BoolVar(&lintJsonOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().BoolVar(&useCache, "cache", false, "Reuse results for unchanged files")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", ".awaitlint-cache", "Directory for cached results")
	lintCmd.Flags().StringVar(&langName, "lang", "js", "Language of standard input: js, ts or tsx")
}

type lintOptions struct {
	isJson     bool
	jsonOutput string
	lang       string
	processor  lint.Processor
}

func applyIgnores(engine lint.LintEngine, rules, paths string) error {
	for _, rule := range splitList(rules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(paths) {
		if err := engine.IgnorePath(path); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func openCache(dir, configPath string) (*internal.Cache, error) {
	cache, err := internal.NewCache(dir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := cache.AddDependency(configPath); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func runNormalLintProcess(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.LintEngine,
	paths []string,
	stdin io.Reader,
	out io.Writer,
	opts lintOptions,
) error {
	sources := make(map[string]*internal.SourceCode)

	var issues []tt.Issue
	var procErr error
	if len(paths) == 1 && paths[0] == stdinArg {
		lang, err := syntax.ParseLanguage(opts.lang)
		if err != nil {
			return err
		}
		src, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("error reading standard input: %w", err)
		}
		sources[internal.StdinFilename] = internal.NewSourceCode(src)
		issues, procErr = lint.ProcessSources(ctx, logger, engine, [][]byte{src}, lang, lint.ProcessSource)
	} else {
		processor := opts.processor
		if processor == nil {
			processor = lint.ProcessFile
		}
		issues, procErr = lint.ProcessFiles(ctx, logger, engine, paths, processor)
	}

	if err := printIssues(logger, out, issues, sources, opts.isJson, opts.jsonOutput); err != nil {
		return err
	}
	if procErr != nil {
		return procErr
	}
	if len(issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

func groupByFile(issues []tt.Issue) (map[string][]tt.Issue, []string) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)
	return issuesByFile, sortedFiles
}

func printIssues(
	logger *zap.Logger,
	out io.Writer,
	issues []tt.Issue,
	sources map[string]*internal.SourceCode,
	isJson bool,
	jsonOutput string,
) error {
	issuesByFile, sortedFiles := groupByFile(issues)

	if !isJson {
		// text output
		for _, filename := range sortedFiles {
			fileIssues := issuesByFile[filename]
			sourceCode, ok := sources[filename]
			if !ok {
				var err error
				sourceCode, err = internal.ReadSourceCode(filename)
				if err != nil {
					logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
					continue
				}
			}
			output := formatter.GenerateFormattedIssue(fileIssues, sourceCode)
			fmt.Fprintln(out, output)
		}
		return nil
	}

	// JSON output
	d, err := json.Marshal(issuesByFile)
	if err != nil {
		return fmt.Errorf("error marshalling issues to JSON: %w", err)
	}
	if jsonOutput == "" {
		fmt.Fprintln(out, string(d))
		return nil
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
