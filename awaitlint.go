// Package awaitlint checks that JavaScript and TypeScript code follows the
// Async naming convention: functions whose names end in "Async" are awaited
// (or returned) by their callers, and nothing else is awaited.
//
// The package is a thin library surface over the engine used by the
// awaitlint command.
//
//	issues, err := awaitlint.Check(ctx, src, "ts", awaitlint.DefaultOptions())
//	if err != nil {
//		// handle error
//	}
//	fixed := awaitlint.Fix(src, issues)
package awaitlint

import (
	"context"

	"github.com/giact/awaitlint/formatter"
	"github.com/giact/awaitlint/internal"
	"github.com/giact/awaitlint/internal/fixer"
	"github.com/giact/awaitlint/internal/lints"
	"github.com/giact/awaitlint/internal/syntax"
	tt "github.com/giact/awaitlint/internal/types"
)

// Issue represents a lint issue found in the code base.
type Issue = tt.Issue

// Options toggles the two checks of the rule.
type Options = lints.AsyncAwaitOptions

// DefaultOptions enables both checks.
func DefaultOptions() Options {
	return lints.DefaultAsyncAwaitOptions()
}

// Check lints src, written in lang ("js", "ts" or "tsx"). Nolint and
// eslint-disable comments in src are honored. Issues are reported against
// the file name "<stdin>".
func Check(ctx context.Context, src []byte, lang string, opts Options) ([]Issue, error) {
	language, err := syntax.ParseLanguage(lang)
	if err != nil {
		return nil, err
	}

	engine, err := internal.NewEngine(".", map[string]tt.ConfigRule{
		lints.AsyncAwaitRuleName: {Severity: tt.SeverityError, Options: opts.OptionsMap()},
	})
	if err != nil {
		return nil, err
	}
	return engine.RunSource(ctx, src, language)
}

// Fix applies the suggested edits of issues to src and returns the result.
// Issues without edits, or whose edits collide with an earlier one, are left
// alone.
func Fix(src []byte, issues []Issue) []byte {
	out, _, _ := fixer.Apply(src, issues)
	return out
}

// Format renders issues against src the way the command prints them.
func Format(issues []Issue, src []byte) string {
	return formatter.GenerateFormattedIssue(issues, internal.NewSourceCode(src))
}
