package syntax

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string, lang Language) *File {
	t.Helper()
	f, err := Parse(context.Background(), "test", []byte(src), lang)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path     string
		expected Language
		ok       bool
	}{
		{"app.js", JavaScript, true},
		{"lib/index.mjs", JavaScript, true},
		{"component.jsx", JavaScript, true},
		{"service.ts", TypeScript, true},
		{"config.cts", TypeScript, true},
		{"View.TSX", TSX, true},
		{"main.go", "", false},
		{"README", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			lang, ok := LanguageForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, lang)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	lang, err := ParseLanguage("TS")
	require.NoError(t, err)
	assert.Equal(t, TypeScript, lang)

	lang, err = ParseLanguage("jsx")
	require.NoError(t, err)
	assert.Equal(t, JavaScript, lang)

	_, err = ParseLanguage("python")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestParseRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := Parse(ctx, "bad.js", []byte{0xff, 0xfe, 0xfd}, JavaScript)
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = ParseFile(ctx, "main.go", []byte("package main"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Parse(canceled, "a.js", []byte("foo()"), JavaScript)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilePosition(t *testing.T) {
	t.Parallel()
	src := "const a = 1;\n\tfooAsync();\n"
	f := parseString(t, src, JavaScript)

	offset := strings.Index(src, "fooAsync")
	pos := f.Position(offset)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 2, pos.Column)
	assert.Equal(t, offset, pos.Offset)
	assert.Equal(t, "test", pos.Filename)

	first := f.Position(0)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, 1, first.Column)
}

func TestWalkVisitsInDocumentOrder(t *testing.T) {
	t.Parallel()
	src := `
first();
function g() {
	second(third());
}
fourth();
`
	f := parseString(t, src, JavaScript)

	var names []string
	err := Walk(context.Background(), f, Visitors{
		KindCallExpression: func(n *Node) {
			names = append(names, f.Text(n.ChildByFieldName("function")))
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, names)
}

func TestNodeEnclosingSkipsParentheses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"direct await", "async function f() { await fooAsync(); }", KindAwaitExpression},
		{"parenthesized await", "async function f() { await ((fooAsync())); }", KindAwaitExpression},
		{"return", "function f() { return fooAsync(); }", KindReturnStatement},
		{"logical", "async function f() { await (fooAsync() || x); }", "binary_expression"},
		{"statement", "fooAsync();", "expression_statement"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := parseString(t, tt.src, JavaScript)

			var kinds []string
			err := Walk(context.Background(), f, Visitors{
				KindCallExpression: func(n *Node) {
					kinds = append(kinds, n.Enclosing().Type())
				},
			})
			require.NoError(t, err)
			require.Len(t, kinds, 1)
			assert.Equal(t, tt.expected, kinds[0])
		})
	}
}

func TestNodeClosestAndHasToken(t *testing.T) {
	t.Parallel()
	src := `
async function outer() {
	const inner = () => fooAsync();
}
`
	f := parseString(t, src, TypeScript)

	var fn *Node
	err := Walk(context.Background(), f, Visitors{
		KindCallExpression: func(n *Node) {
			fn = n.Closest(FunctionKinds...)
		},
	})
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, "arrow_function", fn.Type())
	assert.False(t, fn.HasToken("async"))

	outer := fn.Closest(FunctionKinds...)
	require.NotNil(t, outer)
	assert.Equal(t, "function_declaration", outer.Type())
	assert.True(t, outer.HasToken("async"))
}

func TestWalkStopsOnCanceledContext(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("foo();\n")
	}
	f := parseString(t, b.String(), JavaScript)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Walk(ctx, f, Visitors{})
	assert.ErrorIs(t, err, context.Canceled)
}
