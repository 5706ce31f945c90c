package formatter

// GeneralSummaryFormatter renders discarded sequences and sequences that
// could not be classified.
type GeneralSummaryFormatter struct{}

func (f *GeneralSummaryFormatter) SummaryTemplate() string {
	return `{{header .Verdict .Sequence .Filename .MaxLineNumWidth -}}
{{snippet .SourceLines .MaxLineNumWidth .Padding -}}
{{checks "warn" .Checks .Padding -}}
{{note .Error}}
`
}
