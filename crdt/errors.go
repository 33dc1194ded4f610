package crdt

import (
	"github.com/pkg/errors"
)

// Errors returned by Apply and Batch. Call sites wrap these with
// positional context, so callers discriminate via errors.Cause.
var (
	// ErrNotFound indicates that a path segment, or the anchor sibling
	// of an Add, does not resolve to an existing node.
	ErrNotFound = errors.New("node not found")

	// ErrParentDeleted indicates that the addressed parent has been
	// tombstoned; insertion beneath it is forbidden.
	ErrParentDeleted = errors.New("parent node is deleted")

	// ErrTimestampCollision indicates an Add whose timestamp is already
	// taken by a node with different content. Well-formed replicas never
	// produce this; the colliding operation is rejected rather than
	// silently overwriting state.
	ErrTimestampCollision = errors.New("timestamp already in use")
)
