package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/classify"
	"github.com/gnolang/toracle/internal/predicate"
	"github.com/gnolang/toracle/internal/sequence"
)

func TestCatchType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		visibility predicate.Visibility
		fault      sequence.Fault
		want       string
	}{
		{"exported fault type", predicate.PublicOnly(), sequence.Fault{Type: "*fs.PathError", Class: sequence.FaultChecked}, "*fs.PathError"},
		{"hidden returned error", predicate.PublicOnly(), sequence.Fault{Type: "*errors.errorString", Class: sequence.FaultChecked}, check.CatchError},
		{"hidden panic value", predicate.PublicOnly(), sequence.Fault{Type: "runtime.boundsError", Class: sequence.FaultUnchecked}, check.CatchAny},
		{"universe type", predicate.PublicOnly(), sequence.Fault{Type: "string", Class: sequence.FaultUnchecked}, "string"},
		{"unexported type in test package", predicate.NewPackageVisibility("runtime"), sequence.Fault{Type: "runtime.boundsError", Class: sequence.FaultUnchecked}, "runtime.boundsError"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := NewExpectedExceptionCheckGen(tc.visibility, classify.Default(), true)
			assert.Equal(t, tc.want, g.CatchType(&tc.fault))
		})
	}
}

func TestExpectedExceptionCheckGen(t *testing.T) {
	t.Parallel()

	checked := raised(sequence.FaultChecked, "*fs.PathError")
	unchecked := raised(sequence.FaultUnchecked, "string")

	tests := []struct {
		name              string
		includeAssertions bool
		last              sequence.Outcome
		wantKind          check.Kind
		wantNone          bool
	}{
		{name: "normal final statement", includeAssertions: true, last: normal(1), wantNone: true},
		{name: "expected fault", includeAssertions: true, last: checked, wantKind: check.KindExpectedException},
		{name: "expected fault without assertions", last: checked, wantKind: check.KindEmptyException},
		{name: "fault classified as error", includeAssertions: true, last: unchecked, wantKind: check.KindEmptyException},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			es := execute(t, at(newBox, normal(&box{})), at(popBox, tc.last, 0))
			g := NewExpectedExceptionCheckGen(predicate.PublicOnly(), classify.Default(), tc.includeAssertions)

			got, err := g.Generate(es)
			require.NoError(t, err)
			require.IsType(t, &check.RegressionChecks{}, got)
			if tc.wantNone {
				assert.False(t, got.HasChecks())
				return
			}
			ec := got.ExceptionCheck()
			require.NotNil(t, ec)
			assert.Equal(t, tc.wantKind, ec.Kind())
			assert.Equal(t, 1, ec.Index())

			holds, err := ec.Evaluate(es)
			require.NoError(t, err)
			assert.True(t, holds)
		})
	}
}
