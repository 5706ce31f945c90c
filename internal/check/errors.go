package check

import "errors"

var (
	ErrDuplicateExceptionCheck        = errors.New("regression checks already hold an exception check")
	ErrExceptionCheckInErrorRevealing = errors.New("error-revealing checks cannot hold an exception check")
	ErrInvalidChecksFull              = errors.New("invalid checks already hold a check")
	ErrNotInvalidCheck                = errors.New("check does not mark invalid behavior")
	ErrNilCheck                       = errors.New("nil check")
	// ErrInvalidEvaluation is returned by checks that mark invalid behavior.
	// They are never meant to run.
	ErrInvalidEvaluation = errors.New("invalid-behavior checks cannot be evaluated")
)
