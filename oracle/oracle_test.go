package oracle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal"
	"github.com/gnolang/toracle/internal/generator"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
)

type mockClassifyEngine struct {
	mock.Mock
}

func (m *mockClassifyEngine) Summarize(name string, es *sequence.ExecutableSequence, observers generator.Observers) tt.Summary {
	args := m.Called(name, es, observers)
	return args.Get(0).(tt.Summary)
}

const oneSequence = `
types: [{name: example.com/box.Box}]
operations: [{id: new, name: New, kind: constructor, output: example.com/box.Box}]
sequences:
  - name: %s
    statements: [{op: new, outcome: {value: {id: b}}}]
`

func writeTrace(t *testing.T, dir, name, sequenceName string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(oneSequence, sequenceName)), 0o644))
	return path
}

func TestProcessFile(t *testing.T) {
	t.Parallel()

	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "push-one", mock.Anything, mock.Anything).Return(tt.Summary{Verdict: tt.VerdictRegression})
	mockEngine.On("Summarize", "pop-empty", mock.Anything, mock.Anything).Return(tt.Summary{Verdict: tt.VerdictRegression})
	mockEngine.On("Summarize", "sequence-2", mock.Anything, mock.Anything).Return(tt.Summary{Verdict: tt.VerdictErrorRevealing})

	summaries, err := ProcessFile(mockEngine, "testdata/stack.yaml")
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	for _, s := range summaries {
		assert.Equal(t, "testdata/stack.yaml", s.Filename)
	}
	assert.Equal(t, tt.VerdictErrorRevealing, summaries[2].Verdict)
	mockEngine.AssertExpectations(t)

	_, err = ProcessFile(mockEngine, "testdata/missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := []string{
		writeTrace(t, tempDir, "b.yaml", "second"),
		writeTrace(t, tempDir, "a.yml", "first"),
		writeTrace(t, tempDir, "nested/c.yaml", "third"),
	}
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("not a trace"), 0o644))

	mockEngine := new(mockClassifyEngine)
	for _, name := range []string{"first", "second", "third"} {
		mockEngine.On("Summarize", name, mock.Anything, mock.Anything).Return(tt.Summary{Sequence: name})
	}

	summaries, err := ProcessPath(context.Background(), zap.NewNop(), mockEngine, tempDir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// Files are reported in name order.
	assert.Equal(t, paths[1], summaries[0].Filename)
	assert.Equal(t, paths[0], summaries[1].Filename)
	assert.Equal(t, paths[2], summaries[2].Filename)
	assert.Equal(t, "first", summaries[0].Sequence)
	mockEngine.AssertExpectations(t)
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	trace := writeTrace(t, tempDir, "a.yaml", "only")
	notes := filepath.Join(tempDir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0o644))

	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "only", mock.Anything, mock.Anything).Return(tt.Summary{Sequence: "only"})

	summaries, err := ProcessPath(context.Background(), nil, mockEngine, trace, ProcessFile)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	summaries, err = ProcessPath(context.Background(), nil, mockEngine, notes, ProcessFile)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	_, err = ProcessPath(context.Background(), nil, mockEngine, filepath.Join(tempDir, "missing"), ProcessFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPathErrors(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeTrace(t, tempDir, "a.yaml", "good")
	broken := filepath.Join(tempDir, "b.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("types: ["), 0o644))

	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "good", mock.Anything, mock.Anything).Return(tt.Summary{Sequence: "good"})

	summaries, err := ProcessPath(context.Background(), nil, mockEngine, tempDir, ProcessFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), broken)
	require.Len(t, summaries, 1, "files that parse are still classified")
	assert.Equal(t, "good", summaries[0].Sequence)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeTrace(t, tempDir, fmt.Sprintf("trace%d.yaml", i), fmt.Sprintf("s%d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockEngine := new(mockClassifyEngine)
	summaries, err := ProcessPath(ctx, nil, mockEngine, tempDir, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
	mockEngine.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPathStopsWhileWorkersBusy(t *testing.T) {
	t.Parallel()

	workers := runtime.NumCPU()
	tempDir := t.TempDir()
	for i := 0; i < workers+3; i++ {
		writeTrace(t, tempDir, fmt.Sprintf("trace%03d.yaml", i), fmt.Sprintf("s%d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	started := make(chan struct{}, workers+3)
	processor := func(_ ClassifyEngine, fp string) ([]tt.Summary, error) {
		calls.Add(1)
		started <- struct{}{}
		<-ctx.Done()
		return []tt.Summary{{Sequence: filepath.Base(fp)}}, nil
	}
	go func() {
		for i := 0; i < workers; i++ {
			<-started
		}
		cancel()
	}()

	summaries, err := ProcessPath(ctx, nil, new(mockClassifyEngine), tempDir, processor)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(workers), calls.Load(), "no file starts after cancellation")
	assert.Len(t, summaries, workers)
}

func TestProcessFilesKeepsPartialSummaries(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	first := writeTrace(t, tempDir, "one.yaml", "one")
	dir := filepath.Join(tempDir, "more")
	writeTrace(t, dir, "a.yaml", "two")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("types: ["), 0o644))

	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "one", mock.Anything, mock.Anything).Return(tt.Summary{Sequence: "one"})
	mockEngine.On("Summarize", "two", mock.Anything, mock.Anything).Return(tt.Summary{Sequence: "two"})

	summaries, err := ProcessFiles(context.Background(), zap.NewNop(), mockEngine,
		[]string{first, dir, filepath.Join(tempDir, "missing.yaml")}, ProcessFile)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "missing.yaml", "processing stops at the first failing path")
	require.Len(t, summaries, 2)
	assert.Equal(t, "one", summaries[0].Sequence)
	assert.Equal(t, "two", summaries[1].Sequence)
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := []string{
		writeTrace(t, tempDir, "one.yaml", "one"),
		writeTrace(t, tempDir, "two.yaml", "two"),
	}

	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "one", mock.Anything, mock.Anything).Return(tt.Summary{Sequence: "one"})
	mockEngine.On("Summarize", "two", mock.Anything, mock.Anything).Return(tt.Summary{Sequence: "two"})

	summaries, err := ProcessFiles(context.Background(), zap.NewNop(), mockEngine, paths, ProcessFile)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "one", summaries[0].Sequence)
	assert.Equal(t, "two", summaries[1].Sequence)
	mockEngine.AssertExpectations(t)

	_, err = ProcessFiles(context.Background(), zap.NewNop(), mockEngine,
		[]string{filepath.Join(tempDir, "missing.yaml")}, ProcessFile)
	assert.Error(t, err)
}

func TestCached(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	trace := writeTrace(t, tempDir, "a.yaml", "cached")
	cache, err := internal.NewCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "cached", mock.Anything, mock.Anything).
		Return(tt.Summary{Sequence: "cached", Verdict: tt.VerdictRegression}).Once()

	process := Cached(cache, nil, ProcessFile)
	first, err := process(mockEngine, trace)
	require.NoError(t, err)
	second, err := process(mockEngine, trace)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	mockEngine.AssertNumberOfCalls(t, "Summarize", 1)
}

func TestClassifyTraces(t *testing.T) {
	t.Parallel()

	engine, err := New("", nil)
	require.NoError(t, err)

	tests := []struct {
		file string
		want map[string]tt.Verdict
	}{
		{
			file: "testdata/stack.yaml",
			want: map[string]tt.Verdict{
				"push-one":   tt.VerdictRegression,
				"pop-empty":  tt.VerdictRegression,
				"sequence-2": tt.VerdictErrorRevealing,
			},
		},
		{
			file: "testdata/broken.yaml",
			want: map[string]tt.Verdict{
				"flaky":               tt.VerdictFlaky,
				"missing-observation": tt.VerdictInternalError,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.file, func(t *testing.T) {
			t.Parallel()

			summaries, err := ProcessFile(engine, tc.file)
			require.NoError(t, err)
			got := make(map[string]tt.Verdict, len(summaries))
			for _, s := range summaries {
				got[s.Sequence] = s.Verdict
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyStackChecks(t *testing.T) {
	t.Parallel()

	engine, err := New("", nil)
	require.NoError(t, err)
	summaries, err := ProcessFile(engine, "testdata/stack.yaml")
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	checkIDs := func(s tt.Summary) []string {
		var ids []string
		for _, c := range s.Checks {
			ids = append(ids, c.ID)
		}
		return ids
	}

	const (
		lenCheck  = "ObjectCheck ObserverEqValue(example.com/stack.Stack.Len(example.com/stack.Stack) int, 0)(stack0)"
		modeCheck = "ObjectCheck ObserverEqValue(example.com/stack.Stack.Mode(example.com/stack.Stack) example.com/stack.Mode, stack.LIFO)(stack0)"
	)
	assert.Equal(t, []string{lenCheck, modeCheck}, checkIDs(summaries[0]))
	assert.Equal(t, []string{lenCheck, modeCheck, "ExpectedExceptionCheck @1 *stack.EmptyError"}, checkIDs(summaries[1]))
	assert.Equal(t, []string{"ObjectCheck equals-nil(stack0)"}, checkIDs(summaries[2]))
	assert.False(t, summaries[2].Checks[0].Passing)
}
