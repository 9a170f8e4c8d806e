package cma

import "errors"

var (
	// ErrInvalidArgument is returned for malformed dimensions, non-positive
	// step sizes, mismatched vector lengths and impossible population sizes.
	ErrInvalidArgument = errors.New("cma: invalid argument")

	// ErrNotInitialized is returned when a search is run or queried before
	// Init.
	ErrNotInitialized = errors.New("cma: search not initialized")

	// ErrNumericalDegeneracy is returned when the search distribution can no
	// longer be represented: the eigendecomposition failed, the covariance
	// collapsed, or the step size became non-finite.  The search should be
	// reinitialized or abandoned.
	ErrNumericalDegeneracy = errors.New("cma: numerical degeneracy")
)
