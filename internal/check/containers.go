package check

// Result is a check together with whether it passes on the sequence it was
// derived from.
type Result struct {
	Check   Check
	Passing bool
}

// TestChecks is the classification of an executed sequence. It is one of
// *RegressionChecks, *ErrorRevealingChecks or *InvalidChecks.
type TestChecks interface {
	Count() int
	HasChecks() bool
	HasErrorBehavior() bool
	HasInvalidBehavior() bool
	// Checks returns the checks in insertion order.
	Checks() []Result
	// ExceptionCheck returns the exception check, or nil.
	ExceptionCheck() ExceptionCheck
	Add(c Check) error

	sealedChecks()
}

// checkSet is an insertion-ordered set of checks.
type checkSet struct {
	checks []Check
	ids    map[string]bool
}

func (s *checkSet) add(c Check) {
	if s.ids == nil {
		s.ids = make(map[string]bool)
	}
	if s.ids[c.ID()] {
		return
	}
	s.ids[c.ID()] = true
	s.checks = append(s.checks, c)
}

func (s *checkSet) contains(c Check) bool {
	return s.ids[c.ID()]
}

func (s *checkSet) len() int { return len(s.checks) }

func (s *checkSet) intersect(other *checkSet) checkSet {
	var out checkSet
	for _, c := range s.checks {
		if other.contains(c) {
			out.add(c)
		}
	}
	return out
}

func (s *checkSet) equal(other *checkSet) bool {
	if s.len() != other.len() {
		return false
	}
	for _, c := range s.checks {
		if !other.contains(c) {
			return false
		}
	}
	return true
}

func (s *checkSet) results(passing bool) []Result {
	out := make([]Result, len(s.checks))
	for i, c := range s.checks {
		out[i] = Result{Check: c, Passing: passing}
	}
	return out
}

// RegressionChecks capture the current behavior of a sequence: value
// assertions and at most one exception check.
type RegressionChecks struct {
	checks    checkSet
	exception ExceptionCheck
}

func NewRegressionChecks() *RegressionChecks { return &RegressionChecks{} }

// Add routes exception checks to the exception slot and every other check to
// the set. A second exception check is rejected.
func (r *RegressionChecks) Add(c Check) error {
	if c == nil {
		return ErrNilCheck
	}
	if ec, ok := AsExceptionCheck(c); ok {
		if r.exception != nil {
			return ErrDuplicateExceptionCheck
		}
		r.exception = ec
		return nil
	}
	r.checks.add(c)
	return nil
}

func (r *RegressionChecks) Count() int {
	n := r.checks.len()
	if r.exception != nil {
		n++
	}
	return n
}

func (r *RegressionChecks) HasChecks() bool                { return r.Count() > 0 }
func (r *RegressionChecks) HasErrorBehavior() bool         { return false }
func (r *RegressionChecks) HasInvalidBehavior() bool       { return false }
func (r *RegressionChecks) ExceptionCheck() ExceptionCheck { return r.exception }

func (r *RegressionChecks) Checks() []Result {
	out := r.checks.results(true)
	if r.exception != nil {
		out = append(out, Result{Check: r.exception, Passing: true})
	}
	return out
}

// CommonChecks returns the checks present in both r and other. The exception
// check is kept when both hold equal exception checks.
func (r *RegressionChecks) CommonChecks(other *RegressionChecks) *RegressionChecks {
	common := &RegressionChecks{checks: r.checks.intersect(&other.checks)}
	if r.exception != nil && other.exception != nil && r.exception.Equal(other.exception) {
		common.exception = r.exception
	}
	return common
}

func (r *RegressionChecks) Equal(other *RegressionChecks) bool {
	if other == nil {
		return false
	}
	if (r.exception == nil) != (other.exception == nil) {
		return false
	}
	if r.exception != nil && !r.exception.Equal(other.exception) {
		return false
	}
	return r.checks.equal(&other.checks)
}

// ErrorRevealingChecks hold checks that fail on the sequence, revealing a
// probable bug.
type ErrorRevealingChecks struct {
	checks checkSet
}

func NewErrorRevealingChecks() *ErrorRevealingChecks { return &ErrorRevealingChecks{} }

// Add rejects exception checks: error-revealing tests never expect a fault.
func (e *ErrorRevealingChecks) Add(c Check) error {
	if c == nil {
		return ErrNilCheck
	}
	if _, ok := AsExceptionCheck(c); ok {
		return ErrExceptionCheckInErrorRevealing
	}
	e.checks.add(c)
	return nil
}

func (e *ErrorRevealingChecks) Count() int                     { return e.checks.len() }
func (e *ErrorRevealingChecks) HasChecks() bool                { return e.Count() > 0 }
func (e *ErrorRevealingChecks) HasErrorBehavior() bool         { return e.Count() > 0 }
func (e *ErrorRevealingChecks) HasInvalidBehavior() bool       { return false }
func (e *ErrorRevealingChecks) ExceptionCheck() ExceptionCheck { return nil }
func (e *ErrorRevealingChecks) Checks() []Result               { return e.checks.results(false) }

// CommonChecks returns the checks present in both e and other.
func (e *ErrorRevealingChecks) CommonChecks(other *ErrorRevealingChecks) *ErrorRevealingChecks {
	return &ErrorRevealingChecks{checks: e.checks.intersect(&other.checks)}
}

func (e *ErrorRevealingChecks) Equal(other *ErrorRevealingChecks) bool {
	return other != nil && e.checks.equal(&other.checks)
}

// InvalidChecks mark a sequence as invalid. They hold at most one check.
type InvalidChecks struct {
	check     Check
	overwrite bool
}

// NewInvalidChecks creates an empty container. When overwrite is set a
// second Add replaces the held check, otherwise it fails.
func NewInvalidChecks(overwrite bool) *InvalidChecks {
	return &InvalidChecks{overwrite: overwrite}
}

// Add accepts *InvalidExceptionCheck and *InvalidValueCheck.
func (v *InvalidChecks) Add(c Check) error {
	if c == nil {
		return ErrNilCheck
	}
	if k := c.Kind(); k != KindInvalidException && k != KindInvalidValue {
		return ErrNotInvalidCheck
	}
	if v.check != nil && !v.overwrite {
		return ErrInvalidChecksFull
	}
	v.check = c
	return nil
}

func (v *InvalidChecks) Count() int {
	if v.check == nil {
		return 0
	}
	return 1
}

func (v *InvalidChecks) HasChecks() bool          { return v.check != nil }
func (v *InvalidChecks) HasErrorBehavior() bool   { return false }
func (v *InvalidChecks) HasInvalidBehavior() bool { return v.check != nil }

func (v *InvalidChecks) ExceptionCheck() ExceptionCheck {
	if ec, ok := AsExceptionCheck(v.check); ok {
		return ec
	}
	return nil
}

func (v *InvalidChecks) Checks() []Result {
	if v.check == nil {
		return nil
	}
	return []Result{{Check: v.check, Passing: true}}
}

func (v *InvalidChecks) Equal(other *InvalidChecks) bool {
	if other == nil || (v.check == nil) != (other.check == nil) {
		return false
	}
	return v.check == nil || v.check.Equal(other.check)
}

func (*RegressionChecks) sealedChecks()     {}
func (*ErrorRevealingChecks) sealedChecks() {}
func (*InvalidChecks) sealedChecks()        {}
