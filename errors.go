package main

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is matched by every UnknownNodeError.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoPath is matched by every NoPathError.
	ErrNoPath = errors.New("no path found")

	// ErrSearchCancelled is returned when the search context is done before
	// the destination is reached.
	ErrSearchCancelled = errors.New("search cancelled")

	// ErrEmptyLeg is returned when a leg without nodes is appended to a tour.
	ErrEmptyLeg = errors.New("empty leg")

	// ErrDisjointLeg is returned when a leg does not start where the tour ends.
	ErrDisjointLeg = errors.New("leg does not continue the tour")
)

// UnknownNodeError reports a node id that is absent from the graph.
type UnknownNodeError struct {
	ID NodeID
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q", e.ID)
}

func (e *UnknownNodeError) Is(target error) bool { return target == ErrUnknownNode }

// NoPathError reports that the frontier emptied before reaching To.
type NoPathError struct {
	From NodeID
	To   NodeID
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path found from %q to %q", e.From, e.To)
}

func (e *NoPathError) Is(target error) bool { return target == ErrNoPath }

// GraphIngestionError wraps any failure to read or decode a graph file.
//
// The underlying error can be accessed via errors.Unwrap.
type GraphIngestionError struct {
	Path string
	Err  error
}

func (e *GraphIngestionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("graph ingestion failed: %v", e.Err)
	}
	return fmt.Sprintf("graph ingestion failed for %s: %v", e.Path, e.Err)
}

func (e *GraphIngestionError) Unwrap() error { return e.Err }
