// Package internal provides the lint engine behind awaitlint.
//
// The engine parses JavaScript and TypeScript sources with tree-sitter,
// runs every enabled rule over the tree and returns the issues found, with
// suppressed ones removed and the rest sorted by position.
//
// Key components:
//
// Engine: builds the rule set from the configuration, runs it on files or
// in-memory sources and honors ignored rules and ignored path globs.
//
// LintRule: the contract every rule implements. Rules that accept options
// also implement ConfigurableRule.
//
// Cache: stores the issues of each file keyed by content hash, so that
// unchanged files are not linted again.
//
// Watcher: relints files as they change on disk.
//
// SourceCode: the lines of a source file, used when rendering issues.
//
// Usage:
//
//	engine, err := internal.NewEngine("path/to/root/dir", nil)
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run(ctx, "path/to/file.ts")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("Found issue: %s at %s\n", issue.Message, issue.Start)
//	}
//
// This package is intended for internal use within the linting tool and should not be
// imported by external packages.
package internal
