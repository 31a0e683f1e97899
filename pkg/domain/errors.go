package domain

import (
	"errors"
	"fmt"
)

// ErrSerialization is matched by every SerializationError.
var ErrSerialization = errors.New("snapshot value cannot be canonically serialized")

// ErrPrecondition signals a caller-side programming error. It is not recoverable
// within the detector and is never retried.
var ErrPrecondition = errors.New("precondition violation")

// ErrHookOrder is returned when lifecycle hooks are invoked out of order or more than once.
var ErrHookOrder = fmt.Errorf("%w: lifecycle hooks out of order", ErrPrecondition)

// ErrCyclicTree is returned when a node is reachable twice or a parent chain loops.
var ErrCyclicTree = fmt.Errorf("%w: component tree is not a tree", ErrPrecondition)

// ErrNotBoundary is returned when a node classified as a boundary does not implement Boundary.
var ErrNotBoundary = fmt.Errorf("%w: boundary kind does not implement domain.Boundary", ErrPrecondition)

// ErrReportNotFound is returned when a report ID cannot be found in a store.
var ErrReportNotFound = errors.New("report not found")

// SerializationError describes a snapshot value the fingerprinter refused.
type SerializationError struct {
	// Path locates the value inside the snapshot, e.g. "items[2].handle".
	Path string
	// Type is the Go type of the offending value.
	Type string
	// Reason is a short description of why it was refused.
	Reason string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize %s (%s): %s", e.Path, e.Type, e.Reason)
}

// Is makes errors.Is(err, ErrSerialization) report true.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}
