package chain

import "errors"

var (
	// ErrNotSquare is returned when a transition matrix is ragged or has a
	// different number of rows and columns.
	ErrNotSquare = errors.New("transition matrix is not square")

	// ErrNotStochastic is returned when a matrix column contains a negative
	// entry or does not sum to 1 within the configured tolerance.
	ErrNotStochastic = errors.New("transition matrix is not column stochastic")

	// ErrDuplicateLabel is returned when two states share the same label.
	// A naive map build would silently drop the duplicate, so construction
	// checks for it explicitly.
	ErrDuplicateLabel = errors.New("duplicate state label")

	// ErrLabelCount is returned when the number of labels does not match
	// the matrix dimension.
	ErrLabelCount = errors.New("label count does not match matrix dimension")

	// ErrUnknownLabel is returned when a label passed to Transition, Walk
	// or Path is not a state of the chain.
	ErrUnknownLabel = errors.New("unknown state label")

	// ErrWalkLength is returned when Walk is asked for fewer than one step.
	ErrWalkLength = errors.New("walk length must be at least 1")

	// ErrPathLimit is returned by PathN when the stop state is not reached
	// within the given number of transitions.
	ErrPathLimit = errors.New("path exceeded transition limit")
)
