package formatter

type RegressionFormatter struct{}

func (f *RegressionFormatter) SummaryTemplate() string {
	return `{{header .Verdict .Sequence .Filename .MaxLineNumWidth -}}
{{snippet .SourceLines .MaxLineNumWidth .Padding -}}
{{checks "pass" .Checks .Padding}}
`
}

type ErrorRevealingFormatter struct{}

func (f *ErrorRevealingFormatter) SummaryTemplate() string {
	return `{{header .Verdict .Sequence .Filename .MaxLineNumWidth -}}
{{snippet .SourceLines .MaxLineNumWidth .Padding -}}
{{checks "fail" .Checks .Padding}}
`
}
