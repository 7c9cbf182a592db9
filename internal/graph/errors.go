package graph

import "errors"

// Sentinel errors for stream/store misuse. Callers match them with errors.Is;
// the wrapped message carries the offending pair.
var (
	// ErrDuplicateEdge signals an INSERT for an edge that is already present.
	ErrDuplicateEdge = errors.New("edge already exists")

	// ErrMissingEdge signals a DELETE for an edge that is not present.
	ErrMissingEdge = errors.New("edge does not exist")

	// ErrCapacityExceeded signals that admitting a new node would exceed the
	// configured ceiling. Recoverable: the caller can stop ingesting.
	ErrCapacityExceeded = errors.New("node capacity exceeded")

	// ErrInvariantViolation is returned by the debug consistency checker only.
	// It always indicates a defect in the restructuring logic, never a
	// legitimate runtime condition.
	ErrInvariantViolation = errors.New("summary invariant violated")
)
