package nolint

import (
	"context"
	"go/token"
	"testing"

	"github.com/giact/awaitlint/internal/syntax"
)

func parseSource(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := syntax.Parse(context.Background(), "test.js", []byte(src), syntax.JavaScript)
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func TestParseNolintRules(t *testing.T) {
	t.Parallel()
	input := "rule1,rule2,rule3"
	expected := []string{"rule1", "rule2", "rule3"}
	result := parseIgnoreRuleNames(input)
	if len(result) != len(expected) {
		t.Errorf("Expected %d rules, got %d", len(expected), len(result))
	}
	for _, rule := range expected {
		if _, exists := result[rule]; !exists {
			t.Errorf("Expected rule %s not found", rule)
		}
	}
}

func TestParseNolintComments(t *testing.T) {
	t.Parallel()
	src := `const x = 1;

//nolint:rule1,rule2
function foo() {
	loadAsync();
}

//nolint
bar();
`

	f := parseSource(t, src)
	manager, err := ParseComments(context.Background(), f)
	if err != nil {
		t.Fatalf("ParseComments: %v", err)
	}

	pos := token.Position{Filename: "test.js", Line: 5, Column: 1}
	if !manager.IsNolint(pos, "rule1") {
		t.Errorf("Expected position to be nolinted for rule1")
	}
	if manager.IsNolint(pos, "rule3") {
		t.Errorf("Expected position not to be nolinted for rule3")
	}

	pos = token.Position{Filename: "test.js", Line: 9, Column: 1}
	if !manager.IsNolint(pos, "anyrule") {
		t.Errorf("Expected position to be nolinted for any rule when no specific rules are set")
	}
}

func TestIsNolint(t *testing.T) {
	t.Parallel()
	source := `const a = 1;

async function main() {
	//nolint
	fetchAsync("Line 5");
	fetchAsync("Line 6");
	fetchAsync("Line 7"); //nolint:rule1
	//nolint:rule2
	fetchAsync("Line 9");
	fetchAsync("Line 10"); // eslint-disable-line rule4
	// eslint-disable-next-line async-protect/async-await -- legacy API
	fetchAsync("Line 12");
	/* eslint-disable-next-line */
	fetchAsync("Line 14");
	//nolint:
	fetchAsync("Line 16");
}
`

	f := parseSource(t, source)
	manager, err := ParseComments(context.Background(), f)
	if err != nil {
		t.Fatalf("ParseComments: %v", err)
	}

	tests := []struct {
		rule     string
		line     int
		expected bool
	}{
		{"anyrule", 5, true},      // Line 5 is covered by nolint without rules
		{"anyrule", 6, false},     // Line 6 is not covered
		{"rule1", 7, true},        // Line 7 is covered by nolint:rule1
		{"rule2", 9, true},        // Line 9 is covered by nolint:rule2
		{"rule3", 9, false},       // Line 9 is not covered for rule3
		{"rule4", 10, true},       // eslint-disable-line
		{"rule1", 10, false},      // eslint-disable-line names rule4 only
		{"async-await", 12, true}, // plugin prefix is stripped
		{"async-await", 11, false},
		{"anyrule", 14, true},  // eslint-disable-next-line without rules
		{"anyrule", 16, false}, // malformed nolint is ignored
	}

	for _, test := range tests {
		pos := positionAtLine(test.line)
		result := manager.IsNolint(pos, test.rule)
		if result != test.expected {
			t.Errorf("IsNolint at line %d for rule '%s': expected %v, got %v", test.line, test.rule, test.expected, result)
		}
	}
}

func TestNolintBeforeCodeCoversFile(t *testing.T) {
	t.Parallel()
	source := `// Copyright header
//nolint:async-await

import { load } from "./load";

loadAsync();
`
	f := parseSource(t, source)
	manager, err := ParseComments(context.Background(), f)
	if err != nil {
		t.Fatalf("ParseComments: %v", err)
	}

	if !manager.IsNolint(positionAtLine(6), "async-await") {
		t.Errorf("Expected file-level nolint to cover line 6")
	}
	if manager.IsNolint(positionAtLine(6), "other") {
		t.Errorf("Expected file-level nolint to be limited to async-await")
	}
}

func TestCommentBody(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"// eslint-disable-line":         "eslint-disable-line",
		"/* eslint-disable-next-line */": "eslint-disable-next-line",
		"//plain":                        "plain",
	}
	for input, expected := range tests {
		if got := commentBody(input); got != expected {
			t.Errorf("commentBody(%q) = %q, want %q", input, got, expected)
		}
	}
}

func positionAtLine(line int) token.Position {
	return token.Position{
		Filename: "test.js",
		Line:     line,
		Column:   1,
	}
}
