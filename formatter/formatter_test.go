package formatter

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	tt "github.com/gnolang/toracle/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestGenerateFormattedSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		summary  tt.Summary
		expected string
	}{
		{
			name: "regression",
			summary: tt.Summary{
				Filename: "trace.yaml",
				Sequence: "push-one",
				Verdict:  tt.VerdictRegression,
				Source:   "stack0 := New()\nPush(stack0, 1)\n",
				Checks: []tt.CheckSummary{{
					Kind:    "ObjectCheck",
					ID:      "ObjectCheck IsNotNull(stack0)",
					Passing: true,
					Post:    "assert.NotNil(t, stack0)",
				}},
			},
			expected: `regression: push-one
 --> trace.yaml
  |
1 | stack0 := New()
2 | Push(stack0, 1)
  |
  = ObjectCheck IsNotNull(stack0)
  | assert.NotNil(t, stack0)

`,
		},
		{
			name: "error revealing",
			summary: tt.Summary{
				Filename: "t.yaml",
				Sequence: "pop",
				Verdict:  tt.VerdictErrorRevealing,
				Source:   "stack0 := New()\n",
				Checks: []tt.CheckSummary{{
					Kind: "NoExceptionCheck",
					ID:   "NoExceptionCheck @0 runtime.boundsError",
					Pre:  "// line one\n// line two\n",
				}},
			},
			expected: `error-revealing: pop
 --> t.yaml
  |
1 | stack0 := New()
  |
  = NoExceptionCheck @0 runtime.boundsError
  | // line one
  | // line two

`,
		},
		{
			name: "regression without checks",
			summary: tt.Summary{
				Filename: "t.yaml",
				Sequence: "noop",
				Verdict:  tt.VerdictRegression,
				Source:   "Reset()\n",
			},
			expected: `regression: noop
 --> t.yaml
  |
1 | Reset()

`,
		},
		{
			name: "flaky",
			summary: tt.Summary{
				Filename: "x.yaml",
				Sequence: "f",
				Verdict:  tt.VerdictFlaky,
				Error:    "flaky sequence at 0",
			},
			expected: `flaky: f
 --> x.yaml
Note: flaky sequence at 0

`,
		},
		{
			name: "invalid",
			summary: tt.Summary{
				Filename: "x.yaml",
				Sequence: "inv",
				Verdict:  tt.VerdictInvalid,
				Checks: []tt.CheckSummary{{
					Kind:    "InvalidExceptionCheck",
					ID:      "InvalidExceptionCheck @0 runtime.Error",
					Passing: true,
				}},
			},
			expected: `invalid: inv
 --> x.yaml
  |
  = InvalidExceptionCheck @0 runtime.Error

`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, GenerateFormattedSummary([]tt.Summary{tc.summary}))
		})
	}
}

func TestGenerateFormattedSummaryMultiple(t *testing.T) {
	t.Parallel()

	summaries := []tt.Summary{
		{Filename: "a.yaml", Sequence: "one", Verdict: tt.VerdictInternalError, Error: "boom"},
		{Filename: "a.yaml", Sequence: "two", Verdict: tt.VerdictFlaky, Error: "late"},
	}

	expected := `internal-error: one
 --> a.yaml
Note: boom

flaky: two
 --> a.yaml
Note: late

`
	assert.Equal(t, expected, GenerateFormattedSummary(summaries))
	assert.Empty(t, GenerateFormattedSummary(nil))
}

func TestFormatTotals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		summaries []tt.Summary
		expected  string
	}{
		{"none", nil, "classified 0 sequences\n"},
		{"one", []tt.Summary{{Verdict: tt.VerdictRegression}}, "classified 1 sequence: 1 regression\n"},
		{
			name: "verdict order",
			summaries: []tt.Summary{
				{Verdict: tt.VerdictFlaky},
				{Verdict: tt.VerdictRegression},
				{Verdict: tt.VerdictErrorRevealing},
				{Verdict: tt.VerdictRegression},
			},
			expected: "classified 4 sequences: 2 regression, 1 error-revealing, 1 flaky\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, FormatTotals(tc.summaries))
		})
	}
}

func TestCalculateMaxLineNumWidth(t *testing.T) {
	t.Parallel()

	for endLine, want := range map[int]int{0: 1, 9: 1, 10: 2, 123: 3} {
		assert.Equal(t, want, calculateMaxLineNumWidth(endLine))
	}
}
