package contract

import (
	"fmt"

	"github.com/gnolang/toracle/internal/check"
	"github.com/gnolang/toracle/internal/classify"
	"github.com/gnolang/toracle/internal/sequence"
	tt "github.com/gnolang/toracle/internal/types"
	"github.com/gnolang/toracle/internal/typesys"
)

// TypesMatch reports whether the values of tuple can be passed to a contract
// with the given input types. A generic input type matches a value whose type
// instantiates it, and the type arguments must agree across the tuple.
func TypesMatch(inputTypes []typesys.Type, tuple []sequence.ReferenceValue) bool {
	if len(inputTypes) != len(tuple) {
		return false
	}
	var subst typesys.Substitution
	for i, inputType := range inputTypes {
		valueType := tuple[i].Type
		if valueType == nil {
			return false
		}
		// Only contracts over any accept nil values.
		if sequence.IsNil(tuple[i].Value) {
			if !typesys.Equal(inputType, typesys.Any) {
				return false
			}
			continue
		}
		if !inputType.IsGeneric() {
			if !inputType.IsAssignableFrom(valueType) {
				return false
			}
			continue
		}
		declared, ok := inputType.(*typesys.ClassType)
		if !ok || declared.GenericDeclaration() == nil {
			return false
		}
		classType, ok := valueType.(*typesys.ClassType)
		if !ok {
			return false
		}
		super := classType.MatchingSupertype(declared.GenericDeclaration())
		if super == nil {
			return false
		}
		s := super.TypeSubstitution()
		if !subst.IsConsistentWith(s) {
			return false
		}
		subst = subst.Extend(s)
	}
	return true
}

// SafeEvaluate applies cond to values. A panic or error raised while
// evaluating is returned as a fault of the program under test.
func SafeEvaluate(cond check.Condition, values ...any) (holds bool, fault *sequence.Fault) {
	defer func() {
		if r := recover(); r != nil {
			holds, fault = false, sequence.FaultFromPanic(r)
		}
	}()
	ok, err := cond.Evaluate(values...)
	if err != nil {
		return false, sequence.FaultFromError(err)
	}
	return ok, nil
}

// CheckContract evaluates c over tuple, whose values come from es. It
// returns nil when the contract holds, an *check.ObjectCheck when it fails or
// raises a fault classified as an error, and an *check.InvalidExceptionCheck
// when it raises any other fault.
func CheckContract(
	c Contract,
	tuple []sequence.ReferenceValue,
	es *sequence.ExecutableSequence,
	classifier *classify.Classifier,
) (check.Check, error) {
	if len(tuple) != c.Arity() {
		return nil, fmt.Errorf("%w: %s has arity %d, tuple has %d values", ErrArityMismatch, c.Name(), c.Arity(), len(tuple))
	}
	values := make([]any, len(tuple))
	vars := make([]sequence.Variable, len(tuple))
	for i, rv := range tuple {
		values[i] = rv.Value
		vars[i] = rv.Var
	}

	holds, fault := SafeEvaluate(c, values...)
	if fault == nil {
		if holds {
			return nil, nil
		}
		return check.NewObjectCheck(c, vars...), nil
	}
	if classifier.Classify(fault, -1, es) == tt.BehaviorError {
		return check.NewObjectCheck(c, vars...), nil
	}
	return check.NewInvalidExceptionCheck(fault, es.LastIndex(), fault.Type), nil
}
