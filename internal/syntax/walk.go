package syntax

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds produced by the javascript and typescript grammars.
const (
	KindProgram                 = "program"
	KindComment                 = "comment"
	KindCallExpression          = "call_expression"
	KindMemberExpression        = "member_expression"
	KindSubscriptExpression     = "subscript_expression"
	KindIdentifier              = "identifier"
	KindPropertyIdentifier      = "property_identifier"
	KindAwaitExpression         = "await_expression"
	KindReturnStatement         = "return_statement"
	KindParenthesizedExpression = "parenthesized_expression"
	KindTemplateString          = "template_string"
	KindStatementBlock          = "statement_block"
)

// FunctionKinds are the nodes that open a new function scope.
var FunctionKinds = []string{
	"function_declaration",
	"function_expression",
	"function",
	"generator_function_declaration",
	"generator_function",
	"arrow_function",
	"method_definition",
}

// Node is a tree-sitter node linked to the node that contains it.
//
// tree-sitter can compute parents on its own, but doing so walks down from
// the root every time. Walk keeps an ancestor chain instead and hands each
// visited node a direct link to its parent.
type Node struct {
	*sitter.Node
	parent *Node
}

// Parent returns the immediate syntactic parent, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Enclosing returns the nearest ancestor that is not a parenthesized
// expression. Parentheses are grouping only; `await (f())` awaits f().
func (n *Node) Enclosing() *Node {
	p := n.parent
	for p != nil && p.Type() == KindParenthesizedExpression {
		p = p.parent
	}
	return p
}

// Closest returns the nearest strict ancestor whose kind is in kinds.
func (n *Node) Closest(kinds ...string) *Node {
	for p := n.parent; p != nil; p = p.parent {
		for _, k := range kinds {
			if p.Type() == k {
				return p
			}
		}
	}
	return nil
}

// Field returns the named child of n as a Node whose parent is n.
func (n *Node) Field(name string) *Node {
	child := n.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return &Node{Node: child, parent: n}
}

// Unwrap returns the expression inside a parenthesized expression, or n
// itself for any other node. Nested parentheses are all removed.
func (n *Node) Unwrap() *Node {
	for n != nil && n.Type() == KindParenthesizedExpression {
		var inner *Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child != nil && child.Type() != KindComment {
				inner = &Node{Node: child, parent: n}
				break
			}
		}
		n = inner
	}
	return n
}

// HasToken reports whether n has a direct anonymous child spelled tok,
// such as the `async` keyword of a function.
func (n *Node) HasToken(tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == tok {
			return true
		}
	}
	return false
}

// Visitors maps a node kind to the handler invoked for every node of that kind.
type Visitors map[string]func(*Node)

// cancelCheckInterval is how many nodes are visited between context checks.
const cancelCheckInterval = 256

// Inspect traverses f in document order (pre-order), calling fn for each
// node. When fn returns false the children of that node are skipped.
// Traversal stops early when ctx is done.
func Inspect(ctx context.Context, f *File, fn func(*Node) bool) error {
	stack := make([]*Node, 0, 64)
	stack = append(stack, f.Root())

	visited := 0
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visited++
		if visited%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if !fn(node) {
			continue
		}

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			child := node.Child(i)
			if child != nil {
				stack = append(stack, &Node{Node: child, parent: node})
			}
		}
	}
	return ctx.Err()
}

// Walk visits every node of f in document order and calls the handler
// registered for its kind.
func Walk(ctx context.Context, f *File, visitors Visitors) error {
	return Inspect(ctx, f, func(n *Node) bool {
		if handler, ok := visitors[n.Type()]; ok {
			handler(n)
		}
		return true
	})
}
