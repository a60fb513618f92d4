package scoring

import "errors"

var (
	// ErrInvalidState is returned when a distribution is requested for a task
	// that is not completed.
	ErrInvalidState = errors.New("task is not completed")
	// ErrInvalidWeights is returned when a weight table is incomplete, negative
	// or does not sum to 1.00.
	ErrInvalidWeights = errors.New("invalid weight table")
)
