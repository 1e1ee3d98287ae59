package internal

import (
	"context"

	"github.com/giact/awaitlint/internal/lints"
	"github.com/giact/awaitlint/internal/syntax"
	tt "github.com/giact/awaitlint/internal/types"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(ctx context.Context, file *syntax.File) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	// Meta describes the rule for documentation and the `rules` command.
	Meta() RuleMeta

	Severity() tt.Severity
	SetSeverity(tt.Severity)
}

// ConfigurableRule is a rule that accepts an options object from the configuration file.
type ConfigurableRule interface {
	LintRule
	Configure(options map[string]any) error
}

// RuleMeta is the static description of a rule.
type RuleMeta struct {
	Type        string
	Category    string
	Description string
	Recommended bool
}

// -----------------------------------------------------------------------------

type AsyncAwaitRule struct {
	severity tt.Severity
	options  lints.AsyncAwaitOptions
}

func NewAsyncAwaitRule() LintRule {
	return &AsyncAwaitRule{
		severity: tt.SeverityError,
		options:  lints.DefaultAsyncAwaitOptions(),
	}
}

func (r *AsyncAwaitRule) Check(ctx context.Context, file *syntax.File) ([]tt.Issue, error) {
	return lints.DetectAsyncAwait(ctx, file, r.options, r.severity)
}

func (r *AsyncAwaitRule) Configure(options map[string]any) error {
	opts, err := lints.DecodeAsyncAwaitOptions(options)
	if err != nil {
		return err
	}
	r.options = opts
	return nil
}

func (r *AsyncAwaitRule) Options() lints.AsyncAwaitOptions {
	return r.options
}

func (r *AsyncAwaitRule) Name() string {
	return lints.AsyncAwaitRuleName
}

func (r *AsyncAwaitRule) Meta() RuleMeta {
	return RuleMeta{
		Type:        "suggestion",
		Category:    "Possible Errors",
		Description: "enforce functions with 'Async' naming convention are awaited",
		Recommended: true,
	}
}

func (r *AsyncAwaitRule) Severity() tt.Severity {
	return r.severity
}

func (r *AsyncAwaitRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}
