package layout

import (
	"errors"
	"fmt"
)

// Validation errors returned by Validate and Run.
var (
	// ErrSelfLoop indicates an edge whose source and target are the same node.
	ErrSelfLoop = errors.New("self-loop edge")

	// ErrDuplicateNode indicates two nodes sharing an id.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrEmptyNodeID indicates a node without an id.
	ErrEmptyNodeID = errors.New("empty node id")

	// ErrInvalidViewport indicates a non-positive or non-finite viewport.
	ErrInvalidViewport = errors.New("invalid viewport")
)

// InputError describes which element of an Input failed validation.
type InputError struct {
	Err    error
	NodeID string
	EdgeID int // index into Input.Edges, -1 when not edge related
}

func (e *InputError) Error() string {
	if e.EdgeID >= 0 {
		return fmt.Sprintf("edge %d (%s): %v", e.EdgeID, e.NodeID, e.Err)
	}
	if e.NodeID != "" {
		return fmt.Sprintf("node %q: %v", e.NodeID, e.Err)
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

// IsInvalidInput returns true if err is one of the validation errors.
func IsInvalidInput(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
