package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/contract"
	"github.com/gnolang/toracle/internal/generator"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
	"github.com/gnolang/toracle/internal/typesys"
)

// createTempDir creates a temporary directory and returns its path.
// It also registers a cleanup function to remove the directory after the test.
func createTempDir(t testing.TB, prefix string) string {
	tempDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return tempDir
}

type point struct {
	x       int
	notSelf bool
}

func (p *point) Equal(other any) bool {
	q, ok := other.(*point)
	if !ok || q == nil {
		return false
	}
	if q == p {
		return !p.notSelf
	}
	return p.x == q.x
}

func (p *point) Hash() uint64 { return uint64(p.x) }

var (
	pointType = typesys.NewClassType("example.com/geo", "Point", typesys.KindStruct,
		contract.EqualerType, contract.HasherType)

	newPoint = &sequence.Operation{
		Name: "NewPoint", Package: "example.com/geo",
		OutputType: pointType, Kind: sequence.KindConstructor,
	}
	pointX = &sequence.Operation{
		Name: "X", Receiver: pointType,
		InputTypes: []typesys.Type{pointType}, OutputType: typesys.Int, Kind: sequence.KindMethod,
		Invoke: func(args ...any) (any, error) { return args[0].(*point).x, nil },
	}
	translate = &sequence.Operation{
		Name: "Translate", Receiver: pointType,
		InputTypes: []typesys.Type{pointType}, OutputType: pointType, Kind: sequence.KindMethod,
	}
)

func executed(t *testing.T, stmts []sequence.Statement, outcomes ...sequence.Outcome) *sequence.ExecutableSequence {
	t.Helper()
	seq, err := sequence.NewSequence(stmts...)
	require.NoError(t, err)
	es, err := sequence.NewExecutableSequence(seq, outcomes)
	require.NoError(t, err)
	return es
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(tt.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, len(tt.DefaultContracts), engine.Contracts().Len())
	assert.NotNil(t, engine.Classifier())
	assert.True(t, engine.Visibility().IsVisibleName("example.com/geo.Point"))
	assert.Equal(t, "toracle", engine.Config().Name)
}

func TestNewEngineRejectsConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*tt.Config)
	}{
		{"negative string limit", func(c *tt.Config) { c.StringMaxLen = -1 }},
		{"bad omit pattern", func(c *tt.Config) { c.OmitOperations = []string{"("} }},
		{"unknown contract", func(c *tt.Config) { c.Contracts = []string{"equals-everything"} }},
		{"duplicate contract", func(c *tt.Config) { c.Contracts = []string{"equals-nil", "equals-nil"} }},
		{"unknown fault class", func(c *tt.Config) { c.Classifier.ErrorClasses = []string{"segfault"} }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.DefaultConfig()
			tc.modify(&cfg)
			engine, err := NewEngine(cfg, nil)
			assert.Error(t, err)
			assert.Nil(t, engine)
		})
	}
}

func TestEngineClassifyNil(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(tt.DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = engine.Classify(nil, nil)
	assert.ErrorIs(t, err, sequence.ErrEmptySequence)

	s := engine.Summarize("empty", nil, nil)
	assert.Equal(t, tt.VerdictInternalError, s.Verdict)
	assert.Equal(t, "empty", s.Sequence)
	assert.Empty(t, s.Source)
}

func TestEngineSummarize(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(tt.DefaultConfig(), nil)
	require.NoError(t, err)

	observers := generator.Observers{}
	observers.Add(pointX)

	oom := &sequence.Fault{Type: "runtime.Error", Class: sequence.FaultOutOfMemory}
	boom := &sequence.Fault{Type: "string", Message: "boom", Class: sequence.FaultUnchecked}

	tests := []struct {
		name      string
		stmts     []sequence.Statement
		outcomes  []sequence.Outcome
		want      tt.Verdict
		wantIDs   []string
		wantError bool
	}{
		{
			name:     "regression with observer",
			stmts:    []sequence.Statement{{Op: newPoint}},
			outcomes: []sequence.Outcome{sequence.NormalExecution{Value: &point{x: 3}}},
			want:     tt.VerdictRegression,
			wantIDs: []string{
				check.NewObjectCheck(contract.ObserverEqValue{Observer: pointX, Value: 3},
					sequence.Variable{Index: 0, Type: pointType}).ID(),
			},
		},
		{
			name:     "error revealing",
			stmts:    []sequence.Statement{{Op: newPoint}},
			outcomes: []sequence.Outcome{sequence.NormalExecution{Value: &point{notSelf: true}}},
			want:     tt.VerdictErrorRevealing,
			wantIDs:  []string{"ObjectCheck equals-reflexive(point0)"},
		},
		{
			name:  "invalid",
			stmts: []sequence.Statement{{Op: newPoint}, {Op: translate, Inputs: []int{0}}},
			outcomes: []sequence.Outcome{
				sequence.ExceptionalExecution{Fault: oom},
				sequence.NotExecuted{},
			},
			want:    tt.VerdictInvalid,
			wantIDs: []string{"InvalidExceptionCheck @0 runtime.Error"},
		},
		{
			name:  "flaky",
			stmts: []sequence.Statement{{Op: newPoint}, {Op: translate, Inputs: []int{0}}},
			outcomes: []sequence.Outcome{
				sequence.ExceptionalExecution{Fault: boom},
				sequence.NotExecuted{},
			},
			want:      tt.VerdictFlaky,
			wantError: true,
		},
		{
			name:      "internal error",
			stmts:     []sequence.Statement{{Op: newPoint}, {Op: translate, Inputs: []int{0}}},
			outcomes:  []sequence.Outcome{sequence.NormalExecution{Value: &point{}}, sequence.NotExecuted{}},
			want:      tt.VerdictInternalError,
			wantError: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			es := executed(t, tc.stmts, tc.outcomes...)
			s := engine.Summarize(tc.name, es, observers)
			assert.Equal(t, tc.want, s.Verdict)
			assert.Equal(t, tc.name, s.Sequence)
			assert.Equal(t, es.String(), s.Source)
			if tc.wantError {
				assert.NotEmpty(t, s.Error)
				assert.Empty(t, s.Checks)
				return
			}
			assert.Empty(t, s.Error)
			var got []string
			for _, c := range s.Checks {
				got = append(got, c.ID)
			}
			assert.Equal(t, tc.wantIDs, got)
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	regression := check.NewRegressionChecks()
	require.NoError(t, regression.Add(check.NewObjectCheck(contract.IsNull{},
		sequence.Variable{Index: 1, Type: pointType})))

	revealing := check.NewErrorRevealingChecks()
	require.NoError(t, revealing.Add(check.NewNoExceptionCheck(2, "string")))

	s := Summarize(regression, nil)
	assert.Equal(t, tt.VerdictRegression, s.Verdict)
	require.Len(t, s.Checks, 1)
	assert.Equal(t, tt.CheckSummary{
		Kind:    "ObjectCheck",
		ID:      "ObjectCheck IsNull(point1)",
		Passing: true,
		Post:    contract.IsNull{}.Assertion("point1"),
	}, s.Checks[0])

	s = Summarize(revealing, nil)
	assert.Equal(t, tt.VerdictErrorRevealing, s.Verdict)
	require.Len(t, s.Checks, 1)
	assert.False(t, s.Checks[0].Passing)
	assert.NotEmpty(t, s.Checks[0].Pre)

	s = Summarize(check.NewRegressionChecks(), nil)
	assert.Equal(t, tt.VerdictRegression, s.Verdict)
	assert.Empty(t, s.Checks)

	s = Summarize(nil, &generator.SequenceError{Index: 0, Fault: &sequence.Fault{Type: "string"}})
	assert.Equal(t, tt.VerdictFlaky, s.Verdict)
	assert.Contains(t, s.Error, "flaky sequence")

	s = Summarize(nil, errors.New("boom"))
	assert.Equal(t, tt.VerdictInternalError, s.Verdict)
	assert.Equal(t, "boom", s.Error)
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "watch_test")
	changed := make(chan string, 16)
	w, err := NewWatcher(func(path string) { changed <- path }, nil, dir)
	require.NoError(t, err)

	require.NoError(t, w.Start())
	assert.ErrorIs(t, w.Start(), ErrAlreadyWatching)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	trace := filepath.Join(dir, "trace.yaml")
	require.NoError(t, os.WriteFile(trace, []byte("sequences: []\n"), 0o644))

	select {
	case got := <-changed:
		assert.Equal(t, trace, got)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the trace file")
	}

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "stopping twice is harmless")
}

func TestIsTraceFile(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]bool{
		"trace.yaml":    true,
		"dir/Trace.YML": true,
		"trace.json":    false,
		"yaml":          false,
		"dir.yaml/x.go": false,
	} {
		assert.Equal(t, want, IsTraceFile(path), path)
	}
}
