package types

import "fmt"

// Verdict is the outcome of classifying one executed sequence.
type Verdict int

const (
	// VerdictRegression: the sequence passes and its behavior is captured.
	VerdictRegression Verdict = iota
	// VerdictErrorRevealing: the sequence reveals a probable bug.
	VerdictErrorRevealing
	// VerdictInvalid: the sequence is discarded.
	VerdictInvalid
	// VerdictFlaky: a statement before the last one raised a fault.
	VerdictFlaky
	// VerdictInternalError: classification aborted on a harness defect.
	VerdictInternalError
)

func (v Verdict) String() string {
	switch v {
	case VerdictRegression:
		return "regression"
	case VerdictErrorRevealing:
		return "error-revealing"
	case VerdictInvalid:
		return "invalid"
	case VerdictFlaky:
		return "flaky"
	case VerdictInternalError:
		return "internal-error"
	default:
		return "unknown"
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	for c := VerdictRegression; c <= VerdictInternalError; c++ {
		if c.String() == string(text) {
			*v = c
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", text)
}

// CheckSummary is the rendered form of one check.
type CheckSummary struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Passing bool   `json:"passing"`
	Pre     string `json:"pre,omitempty"`
	Post    string `json:"post,omitempty"`
}

// Summary is the classification of one sequence of a trace file.
type Summary struct {
	Filename string         `json:"filename"`
	Sequence string         `json:"sequence"`
	Verdict  Verdict        `json:"verdict"`
	Checks   []CheckSummary `json:"checks,omitempty"`
	// Error describes a flaky sequence or a harness defect.
	Error string `json:"error,omitempty"`
	// Source is the rendered sequence.
	Source string `json:"source,omitempty"`
}
