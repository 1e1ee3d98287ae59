package fixer

import (
	"context"
	"errors"
	"fmt"

	"github.com/giact/awaitlint/internal/syntax"
)

// ErrBrokenFix is returned when the fixed source no longer parses cleanly.
var ErrBrokenFix = errors.New("fix introduces syntax errors")

// checkSyntax re-parses the fixed source. A result with syntax errors is
// rejected unless the original already had them.
func checkSyntax(ctx context.Context, filename string, before, after []byte) error {
	orig, err := syntax.ParseFile(ctx, filename, before)
	if err != nil {
		return fmt.Errorf("failed to parse original: %w", err)
	}
	defer orig.Close()

	fixed, err := syntax.ParseFile(ctx, filename, after)
	if err != nil {
		return fmt.Errorf("failed to parse fixed source: %w", err)
	}
	defer fixed.Close()

	if fixed.HasError() && !orig.HasError() {
		return fmt.Errorf("%s: %w", filename, ErrBrokenFix)
	}
	return nil
}
