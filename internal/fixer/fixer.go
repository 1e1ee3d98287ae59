package fixer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	tt "github.com/giact/awaitlint/internal/types"
)

type Fixer struct {
	DryRun        bool
	MinConfidence float64 // threshold for fixing issues

	// Out receives the diff in dry-run mode and progress messages otherwise.
	Out io.Writer
}

func New(dryRun bool, threshold float64) *Fixer {
	return &Fixer{
		DryRun:        dryRun,
		MinConfidence: threshold,
		Out:           os.Stdout,
	}
}

// Result summarizes one Fix call.
type Result struct {
	Applied int
	Skipped int
	Diff    string
}

// Fix applies the edits carried by issues to filename. In dry-run mode the
// file is left untouched and a unified diff is written to Out instead.
func (f *Fixer) Fix(ctx context.Context, filename string, issues []tt.Issue) (Result, error) {
	var res Result

	content, err := os.ReadFile(filename)
	if err != nil {
		return res, fmt.Errorf("failed to read file: %w", err)
	}

	fixed, applied, skipped := Apply(content, f.eligible(issues))
	res.Applied, res.Skipped = applied, skipped
	if applied == 0 {
		return res, nil
	}

	if err := checkSyntax(ctx, filename, content, fixed); err != nil {
		return res, err
	}

	if f.DryRun {
		res.Diff = Diff(filename, content, fixed)
		fmt.Fprint(f.out(), res.Diff)
		return res, nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		return res, fmt.Errorf("failed to stat file: %w", err)
	}
	if err := os.WriteFile(filename, fixed, info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(f.out(), "Fixed %d issue(s) in %s\n", applied, filename)
	return res, nil
}

func (f *Fixer) out() io.Writer {
	if f.Out == nil {
		return io.Discard
	}
	return f.Out
}

// eligible keeps issues that carry edits and meet the confidence threshold.
func (f *Fixer) eligible(issues []tt.Issue) []tt.Issue {
	var out []tt.Issue
	for _, issue := range issues {
		if len(issue.Edits) == 0 || issue.Confidence < f.MinConfidence {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// Apply applies the edits of issues to src. All edits of an issue are
// applied together or not at all; an issue whose edits overlap an edit
// already accepted, or fall outside src, is skipped.
func Apply(src []byte, issues []tt.Issue) (out []byte, applied, skipped int) {
	var accepted []tt.TextEdit
	for _, issue := range issues {
		if !editsValid(issue.Edits, len(src)) || overlapsAny(issue.Edits, accepted) {
			skipped++
			continue
		}
		accepted = append(accepted, issue.Edits...)
		applied++
	}

	// apply from the end of the file backwards so earlier offsets stay valid
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Start > accepted[j].Start
	})

	out = append([]byte(nil), src...)
	for _, e := range accepted {
		tail := append([]byte(e.NewText), out[e.End:]...)
		out = append(out[:e.Start], tail...)
	}
	return out, applied, skipped
}

func editsValid(edits []tt.TextEdit, size int) bool {
	for _, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > size {
			return false
		}
	}
	return true
}

func overlapsAny(edits, accepted []tt.TextEdit) bool {
	for _, a := range edits {
		for _, b := range accepted {
			if overlaps(a, b) {
				return true
			}
		}
	}
	return false
}

// overlaps reports whether two edits touch the same bytes. Two insertions
// at the same offset also overlap, since their order would be ambiguous.
func overlaps(a, b tt.TextEdit) bool {
	if a.Start == b.Start {
		return true
	}
	return a.Start < b.End && b.Start < a.End
}

// Diff renders a unified diff between before and after.
func Diff(filename string, before, after []byte) string {
	from, to := string(before), string(after)
	edits := myers.ComputeEdits(span.URIFromPath(filename), from, to)
	unified := gotextdiff.ToUnified(filename, filename, from, edits)
	return fmt.Sprint(unified)
}
