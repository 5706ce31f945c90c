package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	tt "github.com/gnolang/toracle/internal/types"
)

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
	noStyle         = color.New(color.FgWhite)
)

// summaryFormatter is the interface that wraps the SummaryTemplate method.
// Implementations are responsible for rendering summaries of one verdict.
type summaryFormatter interface {
	SummaryTemplate() string
}

// getSummaryFormatter returns the formatter for the given verdict.
// Verdicts without a dedicated formatter use GeneralSummaryFormatter.
func getSummaryFormatter(verdict tt.Verdict) summaryFormatter {
	switch verdict {
	case tt.VerdictRegression:
		return &RegressionFormatter{}
	case tt.VerdictErrorRevealing:
		return &ErrorRevealingFormatter{}
	default:
		return &GeneralSummaryFormatter{}
	}
}

// GenerateFormattedSummary formats classification results into a
// human-readable string.
func GenerateFormattedSummary(summaries []tt.Summary) string {
	var builder strings.Builder
	for _, s := range summaries {
		builder.WriteString(buildSummary(s, getSummaryFormatter(s.Verdict)))
	}
	return builder.String()
}

// FormatTotals renders the number of summaries per verdict.
func FormatTotals(summaries []tt.Summary) string {
	counts := make(map[tt.Verdict]int)
	for _, s := range summaries {
		counts[s.Verdict]++
	}

	noun := "sequences"
	if len(summaries) == 1 {
		noun = "sequence"
	}
	endString := noStyle.Sprintf("classified %d %s", len(summaries), noun)

	var parts []string
	for v := tt.VerdictRegression; v <= tt.VerdictInternalError; v++ {
		if n := counts[v]; n > 0 {
			parts = append(parts, verdictStyle(v.String()).Sprintf("%d %s", n, v))
		}
	}
	if len(parts) > 0 {
		endString += noStyle.Sprint(": ") + strings.Join(parts, noStyle.Sprint(", "))
	}
	return endString + "\n"
}

/***** Summary Formatter Builder *****/

type SummaryData struct {
	Verdict         string
	Filename        string
	Sequence        string
	Padding         string
	MaxLineNumWidth int
	SourceLines     []string
	Checks          []tt.CheckSummary
	Error           string
}

func buildSummary(s tt.Summary, formatter summaryFormatter) string {
	lines := splitLines(s.Source)
	maxLineNumWidth := calculateMaxLineNumWidth(len(lines))

	data := SummaryData{
		Verdict:         s.Verdict.String(),
		Filename:        s.Filename,
		Sequence:        s.Sequence,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		MaxLineNumWidth: maxLineNumWidth,
		SourceLines:     lines,
		Checks:          s.Checks,
		Error:           s.Error,
	}

	funcMap := template.FuncMap{
		"header":  header,
		"snippet": codeSnippet,
		"checks":  checks,
		"note":    note,
	}

	tmpl := template.Must(template.New("summary").Funcs(funcMap).Parse(formatter.SummaryTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting summary: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(verdict string, sequence string, filename string, maxLineNumWidth int) string {
	endString := verdictStyle(verdict).Sprintf("%s: ", verdict)
	endString += ruleStyle.Sprintf("%s\n", sequence)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s\n", filename)

	return endString
}

func codeSnippet(sourceLines []string, maxLineNumWidth int, padding string) string {
	if len(sourceLines) == 0 {
		return ""
	}

	endString := lineStyle.Sprintf("%s|\n", padding)
	for i, line := range sourceLines {
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		endString += lineStyle.Sprintf("%s | %s\n", lineNum, line)
	}

	return endString
}

// checks lists the checks of a summary. mode is "pass", "fail" or "warn"
// and selects the style of the check identifiers.
func checks(mode string, list []tt.CheckSummary, padding string) string {
	if len(list) == 0 {
		return ""
	}

	style := suggestionStyle
	switch mode {
	case "fail":
		style = messageStyle
	case "warn":
		style = warningStyle
	}

	endString := lineStyle.Sprintf("%s|\n", padding)
	for _, c := range list {
		endString += lineStyle.Sprintf("%s= ", padding)
		endString += style.Sprintf("%s\n", c.ID)
		endString += fragment(c.Pre, padding)
		endString += fragment(c.Post, padding)
	}

	return endString
}

func fragment(code string, padding string) string {
	var endString string
	for _, line := range splitLines(code) {
		endString += lineStyle.Sprintf("%s| ", padding)
		endString += noStyle.Sprintf("%s\n", line)
	}
	return endString
}

func note(note string) string {
	if note == "" {
		return ""
	}

	var endString string
	endString = suggestionStyle.Sprint("Note: ")
	endString += lineStyle.Sprintf("%s\n", note)
	return endString
}

func verdictStyle(verdict string) *color.Color {
	switch verdict {
	case "regression":
		return suggestionStyle
	case "invalid", "flaky":
		return warningStyle
	default:
		return errorStyle
	}
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}
