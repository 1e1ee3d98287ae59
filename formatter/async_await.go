package formatter

// AsyncAwaitFormatter renders missing and extra await issues. The
// suggestion shows the call line with `await` added or removed, followed
// by a hint when the issue can be fixed automatically.
type AsyncAwaitFormatter struct{}

func (f *AsyncAwaitFormatter) IssueTemplate() string {
	return issueBody + "{{fixHint .Fixable}}\n"
}
