package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/toracle/internal/generator"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
	"github.com/gnolang/toracle/oracle"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type mockClassifyEngine struct {
	mock.Mock
}

func (m *mockClassifyEngine) Summarize(name string, es *sequence.ExecutableSequence, observers generator.Observers) tt.Summary {
	args := m.Called(name, es, observers)
	return args.Get(0).(tt.Summary)
}

const boxTrace = `
types: [{name: example.com/box.Box}]
operations: [{id: new, name: New, kind: constructor, output: example.com/box.Box}]
sequences:
  - name: make-box
    statements: [{op: new, outcome: {value: {id: b}}}]
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunClassify(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	trace := writeFile(t, filepath.Join(tempDir, "box.yaml"), boxTrace)

	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "make-box", mock.Anything, mock.Anything).
		Return(tt.Summary{Sequence: "make-box", Verdict: tt.VerdictErrorRevealing})

	report, err := runClassify(context.Background(), zap.NewNop(), mockEngine, []string{tempDir}, oracle.ProcessFile)
	require.NoError(t, err)
	require.Len(t, report.Summaries, 1)
	assert.Equal(t, trace, report.Summaries[0].Filename)
	assert.Equal(t, 1, report.Counts.ErrorRevealing)
	assert.True(t, report.Failed())
	mockEngine.AssertExpectations(t)

	_, err = runClassify(context.Background(), zap.NewNop(), mockEngine,
		[]string{filepath.Join(tempDir, "missing")}, oracle.ProcessFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	report := oracle.NewReport()
	report.Add(tt.Summary{Filename: "box.yaml", Sequence: "make-box", Verdict: tt.VerdictFlaky, Error: "late fault"})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, printReport(&buf, report, false, ""))
		assert.Equal(t, "flaky: make-box\n --> box.yaml\nNote: late fault\n\nclassified 1 sequence: 1 flaky\n", buf.String())
	})

	t.Run("json to writer", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, printReport(&buf, report, true, ""))
		var decoded oracle.Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, report.RunID, decoded.RunID)
		assert.Equal(t, report.Summaries, decoded.Summaries)
	})

	t.Run("json to file", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "report.json")
		var buf bytes.Buffer
		require.NoError(t, printReport(&buf, report, true, out))
		assert.Empty(t, buf.String())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		var decoded oracle.Report
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, report.Counts, decoded.Counts)
	})
}

func TestListContracts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, listContracts(&buf, []string{"equals-nil"}))
	out := buf.String()

	assert.Contains(t, out, "* equals-nil")
	assert.Contains(t, out, "  equals-reflexive")
	assert.Contains(t, out, "  not-null")
	assert.Equal(t, 11, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestClassifyChanged(t *testing.T) {
	t.Parallel()

	trace := writeFile(t, filepath.Join(t.TempDir(), "box.yaml"), boxTrace)
	mockEngine := new(mockClassifyEngine)
	mockEngine.On("Summarize", "make-box", mock.Anything, mock.Anything).
		Return(tt.Summary{Sequence: "make-box", Verdict: tt.VerdictRegression})

	var buf bytes.Buffer
	require.NoError(t, classifyChanged(&buf, mockEngine, oracle.ProcessFile, trace))
	assert.Contains(t, buf.String(), "regression: make-box")
	assert.Contains(t, buf.String(), "classified 1 sequence: 1 regression")

	assert.Error(t, classifyChanged(&buf, mockEngine, oracle.ProcessFile, trace+".missing"))
}

// The tests below drive the command tree and share its flag variables, so
// they do not run in parallel.

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	jsonOutput, outPath, cacheDir, verbose = false, "", "", false
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestInitCommand(t *testing.T) {
	config := filepath.Join(t.TempDir(), ".toracle.yaml")

	out, err := execute(t, "--config", config, "init")
	require.NoError(t, err)
	assert.Contains(t, out, config)

	loaded, err := oracle.LoadConfig(config)
	require.NoError(t, err)
	assert.Equal(t, tt.DefaultConfig(), loaded)
}

func TestClassifyCommand(t *testing.T) {
	tempDir := t.TempDir()
	trace := writeFile(t, filepath.Join(tempDir, "box.yaml"), boxTrace)
	config := filepath.Join(tempDir, "missing.yaml")
	report := filepath.Join(tempDir, "report.json")

	_, err := execute(t, "--config", config, "--json", "-o", report,
		"--cache-dir", filepath.Join(tempDir, "cache"), "classify", trace)
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var decoded oracle.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Summaries, 1)
	assert.Equal(t, tt.VerdictRegression, decoded.Summaries[0].Verdict)
	assert.Equal(t, oracle.Counts{Regression: 1}, decoded.Counts)

	// Without a subcommand the root behaves like classify.
	out, err := execute(t, "--config", config, trace)
	require.NoError(t, err)
	assert.Contains(t, out, "regression: make-box")
}

func TestClassifyCommandFailures(t *testing.T) {
	tempDir := t.TempDir()
	trace := writeFile(t, filepath.Join(tempDir, "flaky.yaml"), `
types: [{name: example.com/box.Box}]
operations:
  - {id: new, name: New, kind: constructor, output: example.com/box.Box}
  - {id: len, name: Len, receiver: example.com/box.Box, output: int}
sequences:
  - name: harness-defect
    statements:
      - {op: new, outcome: {value: {id: b}}}
      - {op: len, inputs: [0], outcome: {kind: not-executed}}
`)

	out, err := execute(t, "--config", filepath.Join(tempDir, "missing.yaml"), "classify", trace)
	assert.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, out, "internal-error: harness-defect")

	_, err = execute(t, "classify")
	assert.Error(t, err, "classify needs at least one path")
}

func TestContractsCommand(t *testing.T) {
	config := writeFile(t, filepath.Join(t.TempDir(), ".toracle.yaml"), "contracts: [not-null]\n")

	out, err := execute(t, "--config", config, "contracts")
	require.NoError(t, err)
	assert.Contains(t, out, "* not-null")
	assert.Contains(t, out, "  equals-reflexive")
}
