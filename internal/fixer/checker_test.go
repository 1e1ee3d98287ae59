package fixer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSyntax(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	valid := []byte("async function f() { await loadAsync(); }\n")
	broken := []byte("async function f() { await loadAsync(; }\n")

	assert.NoError(t, checkSyntax(ctx, "a.js", valid, valid))
	assert.ErrorIs(t, checkSyntax(ctx, "a.js", valid, broken), ErrBrokenFix)
	// already broken input is not blamed on the fix
	assert.NoError(t, checkSyntax(ctx, "a.js", broken, broken))
	assert.Error(t, checkSyntax(ctx, "a.go", valid, valid))
}
