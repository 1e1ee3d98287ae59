package internal

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/giact/awaitlint/internal/nolint"
	"github.com/giact/awaitlint/internal/syntax"
	tt "github.com/giact/awaitlint/internal/types"
)

// StdinFilename is the name reported for source read from standard input.
const StdinFilename = "<stdin>"

// DefaultIgnoredPaths are skipped unless the configuration overrides them.
var DefaultIgnoredPaths = []string{"**/node_modules/**"}

// Engine manages the linting process.
type Engine struct {
	rootDir      string
	ignoredRules map[string]bool
	ignoredPaths []string
	rules        map[string]LintRule
}

// NewEngine creates a new lint engine.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule) (*Engine, error) {
	engine := &Engine{
		rootDir:      rootDir,
		ignoredPaths: append([]string(nil), DefaultIgnoredPaths...),
	}
	if err := engine.applyRules(rules); err != nil {
		return nil, err
	}

	return engine, nil
}

// Define the ruleConstructor type
type ruleConstructor func() LintRule

// Define the ruleMap type
type ruleMap map[string]ruleConstructor

// Create a map to hold the mappings of rule names to their constructors
var allRuleConstructors = ruleMap{
	"async-await": NewAsyncAwaitRule,
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) error {
	e.rules = make(map[string]LintRule)
	e.registerDefaultRules()

	// Iterate over the rules and apply severity and options
	for key, rule := range rules {
		r := e.findRule(key)
		if r == nil {
			// Unknown rule, continue to the next one
			continue
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)

		if rule.Options == nil {
			continue
		}
		cr, ok := r.(ConfigurableRule)
		if !ok {
			return fmt.Errorf("rule %s does not take options", key)
		}
		if err := cr.Configure(rule.Options); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) registerDefaultRules() {
	// iterate over allRuleConstructors and add them to the rules map if severity is not off
	for key, newRuleCstr := range allRuleConstructors {
		newRule := newRuleCstr()
		if newRule.Severity() != tt.SeverityOff {
			e.rules[key] = newRule
		}
	}
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// Rules returns the registered rules sorted by name.
func (e *Engine) Rules() []LintRule {
	rules := make([]LintRule, 0, len(e.rules))
	for _, r := range e.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Name() < rules[j].Name()
	})
	return rules
}

// Run applies all lint rules to the given file and returns a slice of Issues.
// Files matching an ignored path produce no issues.
func (e *Engine) Run(ctx context.Context, filename string) ([]tt.Issue, error) {
	if e.IsIgnoredPath(filename) {
		return nil, nil
	}

	lang, ok := syntax.LanguageForFile(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", syntax.ErrUnsupportedLanguage, filename)
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return e.run(ctx, filename, source, lang)
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(ctx context.Context, source []byte, lang syntax.Language) ([]tt.Issue, error) {
	return e.run(ctx, StdinFilename, source, lang)
}

func (e *Engine) run(ctx context.Context, filename string, source []byte, lang syntax.Language) ([]tt.Issue, error) {
	file, err := syntax.Parse(ctx, filename, source, lang)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	defer file.Close()

	nolintMgr, err := nolint.ParseComments(ctx, file)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var allIssues []tt.Issue

	g, gctx := errgroup.WithContext(ctx)
	for _, rule := range e.rules {
		if e.ignoredRules[rule.Name()] {
			continue
		}
		r := rule
		g.Go(func() error {
			issues, err := r.Check(gctx, file)
			if err != nil {
				return fmt.Errorf("rule %s: %w", r.Name(), err)
			}

			nolinted := filterNolintIssues(nolintMgr, issues)

			mu.Lock()
			allIssues = append(allIssues, nolinted...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortIssues(allIssues)
	return allIssues, nil
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath adds a doublestar glob. Files whose path relative to the
// engine root matches it are skipped.
func (e *Engine) IgnorePath(pattern string) error {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid ignore pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	e.ignoredPaths = append(e.ignoredPaths, pattern)
	return nil
}

// IsIgnoredPath reports whether filename matches one of the ignored globs.
func (e *Engine) IsIgnoredPath(filename string) bool {
	candidates := []string{filepath.ToSlash(filepath.Clean(filename))}
	if e.rootDir != "" {
		if rel, err := filepath.Rel(e.rootDir, filename); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	}

	for _, pattern := range e.ignoredPaths {
		for _, name := range candidates {
			// patterns are validated in IgnorePath
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		}
	}
	return false
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		pos := token.Position{
			Filename: issue.Filename,
			Line:     issue.Start.Line,
		}
		if !mgr.IsNolint(pos, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// sortIssues orders issues by position, then by rule name.
func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Start.Offset != b.Start.Offset {
			return a.Start.Offset < b.Start.Offset
		}
		return a.Rule < b.Rule
	})
}

// IsUnsupported reports whether err means the file is not JavaScript or TypeScript.
func IsUnsupported(err error) bool {
	return errors.Is(err, syntax.ErrUnsupportedLanguage)
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

// NewSourceCode splits content into lines.
func NewSourceCode(content []byte) *SourceCode {
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}
}
