package formatter

import (
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/giact/awaitlint/internal"
	tt "github.com/giact/awaitlint/internal/types"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestFormatIssuesWithArrows(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"import { db } from './db';",
			"",
			"function main() {",
			"    const x = 1;",
			"    db.flush();",
			"}",
		},
	}

	issues := []tt.Issue{
		{
			Rule:     "unused-variable",
			Filename: "test.js",
			Start:    token.Position{Line: 4, Column: 11},
			End:      token.Position{Line: 4, Column: 12},
			Message:  "x declared but not used",
		},
		{
			Rule:     "no-flush",
			Filename: "test.js",
			Start:    token.Position{Line: 5, Column: 5},
			End:      token.Position{Line: 5, Column: 15},
			Message:  "flush is slow",
			Severity: tt.SeverityWarning,
		},
	}

	expected := `error: unused-variable
 --> test.js:4:11
  |
4 | const x = 1;
  |       ~
  = x declared but not used

warning: no-flush
 --> test.js:5:5
  |
5 | db.flush();
  | ~~~~~~~~~~
  = flush is slow

`

	result := GenerateFormattedIssue(issues, code)

	assert.Equal(t, expected, result, "Formatted output does not match expected")
}

func TestFormatIssuesWithArrows_Tabs(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"async function main() {",
			"\tif (ready) {",
			"\t\tloadAsync();",
			"\t}",
			"}",
		},
	}

	issues := []tt.Issue{
		{
			Rule:     "example",
			Filename: "test.js",
			Start:    token.Position{Line: 3, Column: 3},
			End:      token.Position{Line: 3, Column: 14},
			Message:  "example issue",
		},
	}

	expected := `error: example
 --> test.js:3:3
  |
3 | loadAsync();
  | ~~~~~~~~~~~
  = example issue

`

	result := GenerateFormattedIssue(issues, code)
	assert.Equal(t, expected, result)
}

func TestFormatIssuesWithArrows_MultipleDigitsLineNumbers(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"async function main() {",
			"  console.log('1');",
			"  console.log('2');",
			"  console.log('3');",
			"  console.log('4');",
			"  console.log('5');",
			"  console.log('6');",
			"  console.log('7');",
			"  console.log('8');",
			"  saveAsync();",
			"}",
		},
	}

	issues := []tt.Issue{
		{
			Rule:     "example",
			Filename: "test.js",
			Start:    token.Position{Line: 10, Column: 3},
			End:      token.Position{Line: 10, Column: 14},
			Message:  "example issue",
		},
	}

	expected := `error: example
  --> test.js:10:3
   |
10 | saveAsync();
   | ~~~~~~~~~~~
   = example issue

`

	result := GenerateFormattedIssue(issues, code)

	assert.Equal(t, expected, result, "Formatted output with multiple digit line numbers does not match expected")
}

func TestAsyncAwaitFormatter(t *testing.T) {
	t.Parallel()

	snippet := &internal.SourceCode{
		Lines: []string{
			"async function main() {",
			"  loadAsync();",
			"  await save();",
			"}",
		},
	}

	t.Run("missing await with fix", func(t *testing.T) {
		issue := tt.Issue{
			Rule:       "async-await",
			Category:   "missing-await",
			Filename:   "test.js",
			Start:      token.Position{Line: 2, Column: 3},
			End:        token.Position{Line: 2, Column: 14},
			Message:    "The call to 'loadAsync' is missing an await",
			Suggestion: "  await loadAsync();",
			Edits:      []tt.TextEdit{{Start: 26, End: 26, NewText: "await "}},
		}

		expected := `error: async-await
 --> test.js:2:3
  |
2 | loadAsync();
  | ~~~~~~~~~~~
  = The call to 'loadAsync' is missing an await
Suggestion:
  |
2 |   await loadAsync();
  |
Fix: run ` + "`awaitlint fix`" + ` to apply

`
		result := GenerateFormattedIssue([]tt.Issue{issue}, snippet)
		assert.Equal(t, expected, result)
	})

	t.Run("note without fix", func(t *testing.T) {
		issue := tt.Issue{
			Rule:     "async-await",
			Category: "extra-await",
			Filename: "test.js",
			Start:    token.Position{Line: 3, Column: 3},
			End:      token.Position{Line: 3, Column: 15},
			Message:  "The call to 'save' has an un-needed await",
			Note:     "save does not return a promise",
			Severity: tt.SeverityInfo,
		}

		expected := `info: async-await
 --> test.js:3:3
  |
3 | await save();
  | ~~~~~~~~~~~~
  = The call to 'save' has an un-needed await
Note: save does not return a promise

`
		result := GenerateFormattedIssue([]tt.Issue{issue}, snippet)
		assert.Equal(t, expected, result)
	})
}

func TestGeneralFormatterForOtherRules(t *testing.T) {
	t.Parallel()

	assert.IsType(t, &AsyncAwaitFormatter{}, getIssueFormatter(AsyncAwait))
	assert.IsType(t, &GeneralIssueFormatter{}, getIssueFormatter("no-floating-promise"))

	code := &internal.SourceCode{
		Lines: []string{
			"async function main() {",
			"  loadAsync();",
			"}",
		},
	}
	issue := tt.Issue{
		Rule:       "no-floating-promise",
		Filename:   "test.js",
		Start:      token.Position{Line: 2, Column: 3},
		End:        token.Position{Line: 2, Column: 14},
		Message:    "promise is dropped",
		Suggestion: "  void loadAsync();",
		Note:       "mark intentional fire-and-forget calls with void",
		Edits:      []tt.TextEdit{{Start: 26, End: 26, NewText: "void "}},
		Severity:   tt.SeverityWarning,
	}

	// only async-await issues carry the fix hint
	expected := `warning: no-floating-promise
 --> test.js:2:3
  |
2 | loadAsync();
  | ~~~~~~~~~~~
  = promise is dropped
Suggestion:
  |
2 |   void loadAsync();
  |
Note: mark intentional fire-and-forget calls with void

`
	assert.Equal(t, expected, GenerateFormattedIssue([]tt.Issue{issue}, code))
}

func TestUnderlineMultiLine(t *testing.T) {
	t.Parallel()

	lines := []string{
		"  loadAsync(a,",
		"    b);",
	}
	result := underlineAndMessage("msg", "  ", 1, 2, 3, 7, lines, "  ")
	assert.Equal(t, "  | ~~~~~~~~~~~~\n  = msg\n", result)
}

func TestFindCommonIndent(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		lines    []string
	}{
		{
			name: "whitespace indent",
			lines: []string{
				"    if (foo) {",
				"        console.log()",
				"    }",
			},
			expected: "    ",
		},
		{
			name: "tab indent",
			lines: []string{
				"	if (foo) {",
				"		console.log()",
				"	}",
			},
			expected: "\t",
		},
		{
			name: "mixed indent (space and tab)",
			lines: []string{
				"\t    if (foo) {",
				"\t    \tconsole.log()",
				"\t    }",
			},
			expected: "\t    ",
		},
		{
			name: "no indent",
			lines: []string{
				"if (foo) {",
				"console.log()",
				"}",
			},
			expected: "",
		},
		{
			name: "empty line",
			lines: []string{
				"    if (foo) {",
				"",
				"        console.log()",
				"    }",
			},
			expected: "    ",
		},
		{
			name:     "empty input",
			lines:    []string{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := findCommonIndent(tt.lines)
			if result != tt.expected {
				t.Errorf("findCommonIndent() = %q, want %q", result, tt.expected)
			}
		})
	}
}
