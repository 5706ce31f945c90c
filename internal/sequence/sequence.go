// Package sequence models candidate tests: sequences of operation calls and
// the outcomes of executing them once.
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnolang/toracle/internal/typesys"
)

var (
	ErrEmptySequence   = errors.New("sequence has no statements")
	ErrNilOperation    = errors.New("statement has no operation")
	ErrForwardInput    = errors.New("input refers to a later statement")
	ErrVoidInput       = errors.New("input refers to a void statement")
	ErrInputArity      = errors.New("input count does not match operation")
	ErrOutcomeArity    = errors.New("outcome count does not match sequence length")
	ErrNotExecuted     = errors.New("statement was not executed")
	ErrNotNormal       = errors.New("statement did not execute normally")
	ErrIndexOutOfRange = errors.New("statement index out of range")
)

// Statement is one operation call. Inputs are indices of earlier statements
// whose values are passed as arguments.
type Statement struct {
	Op     *Operation
	Inputs []int
}

// Variable names the value produced by the statement at Index.
type Variable struct {
	Index int
	Type  typesys.Type
}

// Name returns the name the variable has in rendered test source: the
// lowercased simple type name followed by the index, e.g. "list2".
func (v Variable) Name() string {
	return varPrefix(v.Type) + strconv.Itoa(v.Index)
}

func (v Variable) String() string { return v.Name() }

func varPrefix(t typesys.Type) string {
	if t == nil {
		return "var"
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimLeft(name, "*")
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || !unicode.IsLetter(r) {
		return "var"
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// Sequence is an immutable list of statements.
type Sequence struct {
	stmts []Statement
}

// NewSequence validates and builds a sequence. Every input must refer to an
// earlier, non-void statement and the number of inputs must match the
// operation's input types.
func NewSequence(stmts ...Statement) (*Sequence, error) {
	if len(stmts) == 0 {
		return nil, ErrEmptySequence
	}
	copied := make([]Statement, len(stmts))
	for i, st := range stmts {
		if st.Op == nil {
			return nil, fmt.Errorf("statement %d: %w", i, ErrNilOperation)
		}
		if len(st.Inputs) != len(st.Op.InputTypes) {
			return nil, fmt.Errorf("statement %d (%s): %w: want %d, got %d",
				i, st.Op.Name, ErrInputArity, len(st.Op.InputTypes), len(st.Inputs))
		}
		for _, in := range st.Inputs {
			if in < 0 || in >= i {
				return nil, fmt.Errorf("statement %d: input %d: %w", i, in, ErrForwardInput)
			}
			if stmts[in].Op.IsVoid() {
				return nil, fmt.Errorf("statement %d: input %d: %w", i, in, ErrVoidInput)
			}
		}
		copied[i] = Statement{Op: st.Op, Inputs: append([]int(nil), st.Inputs...)}
	}
	return &Sequence{stmts: copied}, nil
}

// Size returns the number of statements.
func (s *Sequence) Size() int { return len(s.stmts) }

// LastIndex returns the index of the final statement.
func (s *Sequence) LastIndex() int { return len(s.stmts) - 1 }

// Statement returns the statement at i.
func (s *Sequence) Statement(i int) Statement { return s.stmts[i] }

// Operation returns the operation called by the statement at i.
func (s *Sequence) Operation(i int) *Operation { return s.stmts[i].Op }

// Variable returns the variable holding the value of statement i.
func (s *Sequence) Variable(i int) Variable {
	return Variable{Index: i, Type: s.stmts[i].Op.OutputType}
}

// Inputs returns the variables passed to statement i.
func (s *Sequence) Inputs(i int) []Variable {
	vars := make([]Variable, len(s.stmts[i].Inputs))
	for j, in := range s.stmts[i].Inputs {
		vars[j] = s.Variable(in)
	}
	return vars
}

func (s *Sequence) String() string {
	var sb strings.Builder
	for i, st := range s.stmts {
		if !st.Op.IsVoid() {
			sb.WriteString(s.Variable(i).Name())
			sb.WriteString(" := ")
		}
		sb.WriteString(st.Op.Name)
		sb.WriteByte('(')
		for j, in := range st.Inputs {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.Variable(in).Name())
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}
