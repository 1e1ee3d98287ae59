package lints

import (
	"context"
	"strings"

	"github.com/giact/awaitlint/internal/syntax"
	tt "github.com/giact/awaitlint/internal/types"
)

const (
	AsyncAwaitRuleName = "async-await"

	CategoryMissingAwait = "missing-await"
	CategoryExtraAwait   = "extra-await"

	missingAwaitMessage = "The call to '{{name}}' is missing an await"
	extraAwaitMessage   = "The call to '{{name}}' has an un-needed await"

	asyncSuffix = "Async"
)

// AsyncAwaitOptions toggles the two halves of the async-await rule.
type AsyncAwaitOptions struct {
	CheckMissingAwait bool `mapstructure:"checkMissingAwait"`
	CheckExtraAwait   bool `mapstructure:"checkExtraAwait"`
}

// DefaultAsyncAwaitOptions enables both checks.
func DefaultAsyncAwaitOptions() AsyncAwaitOptions {
	return AsyncAwaitOptions{
		CheckMissingAwait: true,
		CheckExtraAwait:   true,
	}
}

// identifierRef is the identifier a call is named after.
type identifierRef struct {
	node *syntax.Node
	name string
}

// calleeIdentifier unwraps call -> member -> identifier chains.
// `fooAsync()` yields foo's identifier, `obj.fooAsync()` the property and
// `fooAsync()()` the innermost callee. Parentheses around the callee are
// transparent, so `(obj.fooAsync)()` names fooAsync. Any other shape (computed member
// access, private fields, super, literals, ...) yields no reference.
func calleeIdentifier(f *syntax.File, n *syntax.Node) (identifierRef, bool) {
	if n == nil {
		return identifierRef{}, false
	}
	switch n.Type() {
	case syntax.KindCallExpression:
		return calleeIdentifier(f, n.Field("function"))
	case syntax.KindMemberExpression:
		return calleeIdentifier(f, n.Field("property"))
	case syntax.KindParenthesizedExpression:
		return calleeIdentifier(f, n.Unwrap())
	case syntax.KindIdentifier, syntax.KindPropertyIdentifier:
		return identifierRef{node: n, name: f.Text(n.Node)}, true
	}
	return identifierRef{}, false
}

// callClassification describes how a call's result is consumed.
// Only the immediate (parenthesis-free) parent is inspected: a call buried
// inside a larger awaited or returned expression counts as neither.
type callClassification struct {
	awaited       bool
	returned      bool
	endsWithAsync bool
}

func classifyCall(call *syntax.Node, name string) callClassification {
	c := callClassification{endsWithAsync: strings.HasSuffix(name, asyncSuffix)}
	if parent := call.Enclosing(); parent != nil {
		c.awaited = parent.Type() == syntax.KindAwaitExpression
		c.returned = parent.Type() == syntax.KindReturnStatement
	}
	return c
}

// verdict applies the decision table. Returning a call hands the awaiting
// to the caller, so it satisfies the missing-await check, but `return await x()`
// on a non-Async name is still an extra await.
func (o AsyncAwaitOptions) verdict(c callClassification) (category, message string, report bool) {
	if o.CheckMissingAwait && c.endsWithAsync && !c.awaited && !c.returned {
		return CategoryMissingAwait, missingAwaitMessage, true
	}
	if o.CheckExtraAwait && !c.endsWithAsync && c.awaited {
		return CategoryExtraAwait, extraAwaitMessage, true
	}
	return "", "", false
}

// formatMessage fills {{key}} placeholders in template from data.
func formatMessage(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// asyncAwaitChecker holds the per-file state of one DetectAsyncAwait run.
type asyncAwaitChecker struct {
	file     *syntax.File
	opts     AsyncAwaitOptions
	severity tt.Severity
	issues   []tt.Issue
}

// DetectAsyncAwait reports calls to *Async functions that are neither awaited
// nor returned, and awaited calls to functions without the Async suffix.
func DetectAsyncAwait(ctx context.Context, f *syntax.File, opts AsyncAwaitOptions, severity tt.Severity) ([]tt.Issue, error) {
	c := &asyncAwaitChecker{file: f, opts: opts, severity: severity}
	if err := syntax.Walk(ctx, f, c.visitors()); err != nil {
		return nil, err
	}
	return c.issues, nil
}

func (c *asyncAwaitChecker) visitors() syntax.Visitors {
	return syntax.Visitors{
		syntax.KindCallExpression: c.checkCall,
	}
}

func (c *asyncAwaitChecker) checkCall(call *syntax.Node) {
	// tag`...` parses as a call but is a tagged template, not an invocation.
	if args := call.ChildByFieldName("arguments"); args != nil && args.Type() == syntax.KindTemplateString {
		return
	}

	ref, ok := calleeIdentifier(c.file, call)
	if !ok {
		return
	}
	if isLifecycleHook(ref.name) {
		return
	}

	category, template, report := c.opts.verdict(classifyCall(call, ref.name))
	if !report {
		return
	}

	start, end := c.file.Span(call.Node)
	issue := tt.Issue{
		Rule:     AsyncAwaitRuleName,
		Category: category,
		Filename: c.file.Filename,
		Start:    start,
		End:      end,
		Message:  formatMessage(template, map[string]string{"name": ref.name}),
		Severity: c.severity,
	}

	switch category {
	case CategoryMissingAwait:
		c.suggestAwait(&issue, call)
	case CategoryExtraAwait:
		c.suggestRemoveAwait(&issue, call)
	}

	c.issues = append(c.issues, issue)
}

// suggestAwait offers to prefix the call with `await` when the enclosing
// function is async. Elsewhere `await` would not compile. When the call's
// result is used as an operand that binds tighter than `await` (a member
// access, a call or an index), the awaited call is parenthesized instead
// and the edit gets a low confidence: `fooAsync().then(cb)` becomes
// `(await fooAsync()).then(cb)`.
func (c *asyncAwaitChecker) suggestAwait(issue *tt.Issue, call *syntax.Node) {
	fn := call.Closest(syntax.FunctionKinds...)
	if fn == nil || !fn.HasToken("async") {
		issue.Note = "The enclosing function is not async. Return the promise, or mark the function async and await the call."
		return
	}

	start, end := int(call.StartByte()), int(call.EndByte())
	if !isTightOperand(call) {
		issue.Edits = []tt.TextEdit{{Start: start, End: start, NewText: "await "}}
		issue.Suggestion = suggestionLines(c.file, issue.Edits, end)
		issue.Confidence = 0.8
		return
	}

	issue.Edits = []tt.TextEdit{
		{Start: start, End: start, NewText: "(await "},
		{Start: end, End: end, NewText: ")"},
	}
	issue.Suggestion = suggestionLines(c.file, issue.Edits, end)
	issue.Note = "The result is used before it is awaited. Check that the rest of the expression expects the resolved value."
	issue.Confidence = 0.6
}

// isTightOperand reports whether call is the object of a member access or
// index, or the callee of another call, where a bare `await` prefix would
// apply to the whole expression.
func isTightOperand(call *syntax.Node) bool {
	parent := call.Enclosing()
	if parent == nil {
		return false
	}

	var operand *syntax.Node
	switch parent.Type() {
	case syntax.KindMemberExpression, syntax.KindSubscriptExpression:
		operand = parent.Field("object")
	case syntax.KindCallExpression:
		operand = parent.Field("function")
	default:
		return false
	}
	return operand != nil &&
		operand.StartByte() <= call.StartByte() &&
		call.EndByte() <= operand.EndByte()
}

// suggestRemoveAwait deletes the `await` keyword in front of the call.
func (c *asyncAwaitChecker) suggestRemoveAwait(issue *tt.Issue, call *syntax.Node) {
	await := call.Enclosing()
	operand := await.NamedChild(0)
	if operand == nil {
		return
	}

	issue.Edits = []tt.TextEdit{{Start: int(await.StartByte()), End: int(operand.StartByte())}}
	issue.Suggestion = suggestionLines(c.file, issue.Edits, int(call.EndByte()))
	issue.Confidence = 0.9
}

// suggestionLines renders the full source lines touched by edits and the
// span up to end, with edits applied. Edits are sorted and disjoint.
func suggestionLines(f *syntax.File, edits []tt.TextEdit, end int) string {
	src := f.Source
	first := edits[0].Start
	lineStart := first - (f.Position(first).Column - 1)
	lineEnd := end
	for lineEnd < len(src) && src[lineEnd] != '\n' {
		lineEnd++
	}

	var b strings.Builder
	pos := lineStart
	for _, edit := range edits {
		b.Write(src[pos:edit.Start])
		b.WriteString(edit.NewText)
		pos = edit.End
	}
	b.Write(src[pos:lineEnd])
	return strings.TrimRight(b.String(), "\r")
}
