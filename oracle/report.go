package oracle

import (
	"time"

	"github.com/google/uuid"

	tt "github.com/gnolang/toracle/internal/types"
)

// Report is the outcome of one classification run.
type Report struct {
	RunID     uuid.UUID    `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Summaries []tt.Summary `json:"summaries"`
	Counts    Counts       `json:"counts"`
}

// Counts tallies summaries by verdict.
type Counts struct {
	Regression     int `json:"regression"`
	ErrorRevealing int `json:"error_revealing"`
	Invalid        int `json:"invalid"`
	Flaky          int `json:"flaky"`
	InternalError  int `json:"internal_error"`
}

// NewReport starts a report with a fresh run identifier.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
}

// Add appends summaries and updates the counts.
func (r *Report) Add(summaries ...tt.Summary) {
	for _, s := range summaries {
		switch s.Verdict {
		case tt.VerdictRegression:
			r.Counts.Regression++
		case tt.VerdictErrorRevealing:
			r.Counts.ErrorRevealing++
		case tt.VerdictInvalid:
			r.Counts.Invalid++
		case tt.VerdictFlaky:
			r.Counts.Flaky++
		case tt.VerdictInternalError:
			r.Counts.InternalError++
		}
	}
	r.Summaries = append(r.Summaries, summaries...)
}

// Failed reports whether the run found errors or could not classify some
// sequence.
func (r *Report) Failed() bool {
	return r.Counts.ErrorRevealing > 0 || r.Counts.InternalError > 0
}
