package formatter

// issueBody is the part of the template shared by every rule: header,
// snippet, underline, suggestion and note.
const issueBody = `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent -}}
{{if .Suggestion}}{{suggestion .Suggestion .Padding .MaxLineNumWidth .StartLine}}{{end -}}
{{if .Note}}{{note .Note}}{{end}}`

// GeneralIssueFormatter renders issues of rules without a dedicated template.
type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return issueBody + "\n"
}
