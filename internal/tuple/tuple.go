// Package tuple builds fixed-arity tuples of values for contract checking.
package tuple

// Set is an immutable set of tuples that all have the same arity. The order
// of tuples is fully determined by the order of the elements used to build
// the set.
type Set[E any] struct {
	tuples [][]E
	arity  int
}

// NewSet returns the set holding only the empty tuple.
func NewSet[E any]() Set[E] {
	return Set[E]{tuples: [][]E{{}}}
}

// Arity returns the length of every tuple in the set.
func (s Set[E]) Arity() int { return s.arity }

// Len returns the number of tuples.
func (s Set[E]) Len() int { return len(s.tuples) }

// Tuples returns the tuples in generation order. Callers must not modify
// the returned slices.
func (s Set[E]) Tuples() [][]E { return s.tuples }

// Extend appends each element of elems to each tuple. Tuples vary slowest:
// for tuples [t1 t2] and elements [a b] the result is [t1+a t1+b t2+a t2+b].
func (s Set[E]) Extend(elems []E) Set[E] {
	out := make([][]E, 0, len(s.tuples)*len(elems))
	for _, t := range s.tuples {
		for _, e := range elems {
			out = append(out, appendCopy(t, len(t), e))
		}
	}
	return Set[E]{tuples: out, arity: s.arity + 1}
}

// ExhaustivelyExtend inserts each element of elems at every position of each
// tuple, from the front to the back.
func (s Set[E]) ExhaustivelyExtend(elems []E) Set[E] {
	out := make([][]E, 0, len(s.tuples)*len(elems)*(s.arity+1))
	for _, t := range s.tuples {
		for _, e := range elems {
			for pos := 0; pos <= len(t); pos++ {
				out = append(out, appendCopy(t, pos, e))
			}
		}
	}
	return Set[E]{tuples: out, arity: s.arity + 1}
}

// appendCopy returns a copy of t with e inserted at pos.
func appendCopy[E any](t []E, pos int, e E) []E {
	out := make([]E, 0, len(t)+1)
	out = append(out, t[:pos]...)
	out = append(out, e)
	return append(out, t[pos:]...)
}
