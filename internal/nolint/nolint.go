package nolint

import (
	"context"
	"fmt"
	"go/token"
	"strings"

	"github.com/giact/awaitlint/internal/syntax"
)

const (
	nolintPrefix = "//nolint"

	eslintDisableLine     = "eslint-disable-line"
	eslintDisableNextLine = "eslint-disable-next-line"
)

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	// scopes maps filename to a slice of nolint scopes.
	scopes map[string][]nolintScope
}

// nolintScope represents a range in the code where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start token.Position
	end   token.Position
}

// fileIndex is what scope resolution needs to know about a file,
// gathered in a single traversal.
type fileIndex struct {
	comments []*syntax.Node
	// stmtMap maps a line to the outermost statement starting on it.
	stmtMap map[int]*syntax.Node
	// firstCodeLine is the line of the first non-comment top-level node.
	firstCodeLine int
}

// ParseComments parses nolint and eslint-disable comments in f and returns a Manager.
func ParseComments(ctx context.Context, f *syntax.File) (*Manager, error) {
	manager := Manager{
		scopes: make(map[string][]nolintScope),
	}

	idx, err := indexFile(ctx, f)
	if err != nil {
		return nil, err
	}

	for _, comment := range idx.comments {
		ns, err := parseComment(comment, f, idx)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		filename := ns.start.Filename
		manager.scopes[filename] = append(manager.scopes[filename], ns)
	}
	return &manager, nil
}

// parseComment parses a single comment and determines its scope.
func parseComment(comment *syntax.Node, f *syntax.File, idx fileIndex) (nolintScope, error) {
	text := f.Text(comment.Node)
	if strings.HasPrefix(text, nolintPrefix) {
		return parseNolintComment(text, comment, f, idx)
	}
	return parseESLintDirective(text, comment, f)
}

func parseNolintComment(text string, comment *syntax.Node, f *syntax.File, idx fileIndex) (nolintScope, error) {
	var ns nolintScope

	rest := text[len(nolintPrefix):]

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}

	if len(rest) > 0 && rest[0] == ':' {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)

	pos, _ := f.Span(comment.Node)

	// before any code: the whole file
	if idx.firstCodeLine == 0 || pos.Line < idx.firstCodeLine {
		ns.start = f.Position(0)
		ns.end = f.Position(len(f.Source))
		return ns, nil
	}

	// trailing comment: the statement it sits on
	if isInlineComment(pos, idx.stmtMap) {
		stmt := idx.stmtMap[pos.Line]
		ns.start, ns.end = f.Span(stmt.Node)
		return ns, nil
	}

	// standalone comment: the statement or declaration on the next line
	if stmt, exists := idx.stmtMap[pos.Line+1]; exists {
		_, ns.end = f.Span(stmt.Node)
		ns.start = pos
		return ns, nil
	}

	// default behavior:
	// apply only to the comment line
	ns.start = pos
	ns.end = pos
	return ns, nil
}

// parseESLintDirective handles `eslint-disable-line` and
// `eslint-disable-next-line`, so suppressions written for ESLint keep working.
func parseESLintDirective(text string, comment *syntax.Node, f *syntax.File) (nolintScope, error) {
	var ns nolintScope

	body := commentBody(text)
	var nextLine bool
	switch {
	case strings.HasPrefix(body, eslintDisableNextLine):
		body = body[len(eslintDisableNextLine):]
		nextLine = true
	case strings.HasPrefix(body, eslintDisableLine):
		body = body[len(eslintDisableLine):]
	default:
		return ns, fmt.Errorf("not a directive")
	}
	if body != "" && body[0] != ' ' && body[0] != '\t' {
		return ns, fmt.Errorf("invalid eslint directive")
	}

	// "-- reason" trails the rule list
	if i := strings.Index(body, "--"); i >= 0 {
		body = body[:i]
	}

	ns.rules = make(map[string]struct{})
	for rule := range parseIgnoreRuleNames(strings.TrimSpace(body)) {
		// plugin-qualified names: async-protect/async-await
		if i := strings.LastIndexByte(rule, '/'); i >= 0 {
			rule = rule[i+1:]
		}
		ns.rules[rule] = struct{}{}
	}

	pos, _ := f.Span(comment.Node)
	if nextLine {
		pos.Line++
	}
	ns.start = pos
	ns.end = pos
	return ns, nil
}

// commentBody strips the comment delimiters and surrounding blanks.
func commentBody(text string) string {
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	}
	return strings.TrimSpace(text)
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	rules := strings.Split(text, ",")
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// indexFile traverses the tree once, collecting comments and mapping each
// line to the first statement that starts on it.
func indexFile(ctx context.Context, f *syntax.File) (fileIndex, error) {
	idx := fileIndex{stmtMap: make(map[int]*syntax.Node)}

	root := f.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != syntax.KindComment {
			idx.firstCodeLine = int(child.StartPoint().Row) + 1
			break
		}
	}

	err := syntax.Inspect(ctx, f, func(n *syntax.Node) bool {
		if n.Type() == syntax.KindComment {
			idx.comments = append(idx.comments, n)
			return false
		}
		if isStatement(n.Type()) {
			line := int(n.StartPoint().Row) + 1
			if _, exists := idx.stmtMap[line]; !exists {
				idx.stmtMap[line] = n
			}
		}
		return true
	})
	return idx, err
}

// isStatement reports whether kind is a statement, a declaration, or a class member.
func isStatement(kind string) bool {
	switch kind {
	case "method_definition", "public_field_definition", "field_definition":
		return true
	}
	return strings.HasSuffix(kind, "_statement") || strings.HasSuffix(kind, "_declaration")
}

// isInlineComment determines if a comment trails a statement on the same line.
func isInlineComment(pos token.Position, stmtMap map[int]*syntax.Node) bool {
	if stmt, exists := stmtMap[pos.Line]; exists {
		return pos.Offset > int(stmt.StartByte())
	}
	return false
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	scopes, exists := m.scopes[pos.Filename]
	if !exists {
		return false
	}
	for _, ns := range scopes {
		if pos.Line < ns.start.Line || pos.Line > ns.end.Line {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
