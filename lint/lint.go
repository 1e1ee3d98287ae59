package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/giact/awaitlint/internal"
	"github.com/giact/awaitlint/internal/lints"
	"github.com/giact/awaitlint/internal/syntax"
	tt "github.com/giact/awaitlint/internal/types"
	"github.com/giact/awaitlint/scanner"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".awaitlint.yaml"

type LintEngine interface {
	Run(ctx context.Context, filePath string) ([]tt.Issue, error)
	RunSource(ctx context.Context, source []byte, lang syntax.Language) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(pattern string) error
}

// Processor lints a single file.
type Processor func(ctx context.Context, engine LintEngine, path string) ([]tt.Issue, error)

// SourceProcessor lints an in-memory buffer.
type SourceProcessor func(ctx context.Context, engine LintEngine, source []byte, lang syntax.Language) ([]tt.Issue, error)

// New loads the configuration at configurationPath and builds an engine
// rooted at rootDir. A missing configuration file means the defaults.
func New(rootDir string, configurationPath string) (*internal.Engine, error) {
	config, err := parseConfigurationFile(configurationPath)
	if err != nil {
		return nil, err
	}

	engine, err := internal.NewEngine(rootDir, config.Rules)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", configurationPath, err)
	}
	for _, pattern := range config.Ignore {
		if err := engine.IgnorePath(pattern); err != nil {
			return nil, fmt.Errorf("invalid configuration %s: %w", configurationPath, err)
		}
	}
	return engine, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	lang syntax.Language,
	processor SourceProcessor,
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		issues, err := processor(ctx, engine, source, lang)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor Processor,
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	var errs []error
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		allIssues = append(allIssues, issues...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			if ctx.Err() != nil {
				return allIssues, err
			}
			errs = append(errs, err)
		}
	}

	return allIssues, errors.Join(errs...)
}

// ProcessPath lints a file, or every JavaScript and TypeScript file below a
// directory. Files are linted concurrently. A failing file does not stop
// the others; its error is returned along with the issues that were found.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor Processor,
) ([]tt.Issue, error) {
	issues := make([]tt.Issue, 0)

	info, err := os.Stat(path)
	if err != nil {
		return issues, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			if logger != nil {
				logger.Debug("Skipping unsupported file", zap.String("file", path))
			}
			return issues, nil
		}
		fileIssues, err := processor(ctx, engine, path)
		if err != nil {
			return issues, err
		}
		return append(issues, fileIssues...), nil
	}

	files, err := collectFiles(ctx, path)
	if err != nil {
		return issues, err
	}

	bar := newProgressBar(len(files), path)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())

	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
			wg.Add(1)
			go func(fp string) {
				defer wg.Done()
				defer func() { <-sem }()

				bar.Describe(filepath.Base(fp))
				fileIssues, err := processor(ctx, engine, fp)

				mu.Lock()
				if err != nil {
					if logger != nil {
						logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
					}
					errs = append(errs, fmt.Errorf("%s: %w", fp, err))
				} else {
					issues = append(issues, fileIssues...)
				}
				mu.Unlock()
				_ = bar.Add(1)
			}(filePath)
		}
	}
	wg.Wait()
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return issues, err
	}
	return issues, errors.Join(errs...)
}

// collectFiles lists the lintable files under root.
func collectFiles(ctx context.Context, root string) ([]string, error) {
	infos, err := scanner.New(root, syntax.Extensions()...).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	files := make([]string, 0, len(infos))
	for _, info := range infos {
		files = append(files, info.Path)
	}
	return files, nil
}

// newProgressBar draws on stderr, and only when stderr is a terminal.
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	visible := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ProcessFile(ctx context.Context, engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(ctx, filePath)
}

func ProcessSource(ctx context.Context, engine LintEngine, source []byte, lang syntax.Language) ([]tt.Issue, error) {
	return engine.RunSource(ctx, source, lang)
}

// CachedProcessor wraps next so that files unchanged since the last run
// reuse their stored issues.
func CachedProcessor(cache *internal.Cache, next Processor) Processor {
	return func(ctx context.Context, engine LintEngine, path string) ([]tt.Issue, error) {
		if issues, ok := cache.Get(path); ok {
			return issues, nil
		}
		issues, err := next(ctx, engine, path)
		if err != nil {
			return nil, err
		}
		if err := cache.Set(path, issues); err != nil {
			return nil, fmt.Errorf("error caching results: %w", err)
		}
		return issues, nil
	}
}

func hasDesiredExtension(path string) bool {
	return syntax.IsSupported(path)
}

// Config represents the overall configuration with a name and a slice of rules.
type Config struct {
	Name   string                   `yaml:"name"`
	Rules  map[string]tt.ConfigRule `yaml:"rules"`
	Ignore []string                 `yaml:"ignore,omitempty"`
}

// DefaultConfig enables every rule at its default severity and options.
func DefaultConfig() Config {
	return Config{
		Name: "awaitlint",
		Rules: map[string]tt.ConfigRule{
			lints.AsyncAwaitRuleName: {
				Severity: tt.SeverityError,
				Options:  lints.DefaultAsyncAwaitOptions().OptionsMap(),
			},
		},
		Ignore: []string{"**/dist/**", "**/*.min.js"},
	}
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	if configurationPath == "" {
		configurationPath = DefaultConfigFile
	}

	// Read the configuration file
	f, err := os.Open(configurationPath)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	// Parse the configuration file
	var config Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("error parsing %s: %w", configurationPath, err)
	}

	return config, nil
}
