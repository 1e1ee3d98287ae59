package syntax

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"sort"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// MaxFileSize is the largest source accepted by Parse.
const MaxFileSize = 10 * 1024 * 1024

var (
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
	ErrInvalidContent      = errors.New("content is not valid UTF-8")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// File is a parsed source file. Close releases the underlying tree.
type File struct {
	Filename string
	Language Language
	Source   []byte

	tree       *sitter.Tree
	lineStarts []int
}

// Parse parses src with the grammar for lang.
//
// A new tree-sitter parser is created per call, so Parse is safe for
// concurrent use. Syntax errors do not fail the parse; tree-sitter
// recovers and marks the broken region with ERROR nodes.
func Parse(ctx context.Context, filename string, src []byte, lang Language) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if len(src) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(src) {
		return nil, ErrInvalidContent
	}

	grammar, err := lang.grammar()
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	return &File{
		Filename:   filename,
		Language:   lang,
		Source:     src,
		tree:       tree,
		lineStarts: indexLines(src),
	}, nil
}

// ParseFile parses src choosing the grammar from the filename extension.
func ParseFile(ctx context.Context, filename string, src []byte) (*File, error) {
	lang, ok := LanguageForFile(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filename)
	}
	return Parse(ctx, filename, src, lang)
}

// Close releases the syntax tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Root returns the program node. It has no parent.
func (f *File) Root() *Node {
	return &Node{Node: f.tree.RootNode()}
}

// HasError reports whether the tree contains syntax errors.
func (f *File) HasError() bool {
	return f.tree.RootNode().HasError()
}

// Text returns the source text spanned by n.
func (f *File) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(f.Source[n.StartByte():n.EndByte()])
}

// Position converts a byte offset into a 1-based line/column position.
// Columns count bytes, the same way go/token does.
func (f *File) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Source) {
		offset = len(f.Source)
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	return token.Position{
		Filename: f.Filename,
		Offset:   offset,
		Line:     line + 1,
		Column:   offset - f.lineStarts[line] + 1,
	}
}

// Span returns the start and end positions of n.
func (f *File) Span(n *sitter.Node) (token.Position, token.Position) {
	return f.Position(int(n.StartByte())), f.Position(int(n.EndByte()))
}

func indexLines(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
