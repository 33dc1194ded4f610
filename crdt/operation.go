package crdt

import (
	"fmt"
	"strconv"
	"strings"
)

// Structs

// Path addresses a node by the timestamps passed while descending from
// the root. As the last element of an Add's path, the zero timestamp is
// the front-insertion sentinel: such a path means "at the beginning of
// the children of the node addressed by the prefix", while a non-zero
// last element means "immediately after that sibling".
type Path []Timestamp

// Operation is the unit of replication and logging: one of Add, Delete
// or Batch, broadcast verbatim to every other replica and fed to Apply
// there.
type Operation interface {
	fmt.Stringer

	// operation seals the set of variants.
	operation()
}

// Add inserts a new node carrying Timestamp and Payload into the
// children of the node addressed by all but the last element of Path.
// The last element is the anchor, see Path. Replica identifies the
// author for diagnostics; merge semantics depend on the timestamp only.
type Add struct {
	Replica   ReplicaID
	Timestamp Timestamp
	Path      Path
	Payload   string
}

// Delete marks the node at Path as a tombstone. The node is retained,
// its payload becomes unobservable and its subtree is frozen against
// further Adds.
type Delete struct {
	Replica ReplicaID
	Path    Path
}

// Batch applies an ordered sequence of operations atomically: either
// every operation takes effect or none does.
type Batch struct {
	Operations []Operation
}

// Functions

func (op *Add) operation()    {}
func (op *Delete) operation() {}
func (op *Batch) operation()  {}

// String marshals the path into its dotted representation, e.g.
// "1.4.0". The empty path addressing the root marshals to ".".
func (p Path) String() string {

	if len(p) == 0 {
		return "."
	}

	parts := make([]string, len(p))
	for i, ts := range p {
		parts[i] = strconv.FormatUint(uint64(ts), 10)
	}

	return strings.Join(parts, ".")
}

// prefix returns the path without its final anchor element.
func (p Path) prefix() Path {
	return p[:(len(p) - 1)]
}

// anchor returns the final element of the path.
func (p Path) anchor() Timestamp {
	return p[len(p)-1]
}

// String renders the Add in the pipe-delimited diagnostic form
// "add|replica|timestamp|path|payload".
func (op *Add) String() string {
	return fmt.Sprintf("add|%d|%d|%s|%s", op.Replica, op.Timestamp, op.Path, op.Payload)
}

// String renders the Delete in the pipe-delimited diagnostic form
// "del|replica|path".
func (op *Delete) String() string {
	return fmt.Sprintf("del|%d|%s", op.Replica, op.Path)
}

// String renders the Batch as the semicolon-joined renditions of its
// operations, wrapped in "batch[...]".
func (op *Batch) String() string {

	parts := make([]string, len(op.Operations))
	for i, sub := range op.Operations {
		parts[i] = sub.String()
	}

	return fmt.Sprintf("batch[%s]", strings.Join(parts, ";"))
}

// Flatten expands nested Batch operations into the underlying Adds and
// Deletes, preserving order. Empty batches contribute nothing.
func Flatten(ops []Operation) []Operation {

	flat := make([]Operation, 0, len(ops))

	for _, op := range ops {

		if batch, isBatch := op.(*Batch); isBatch {
			flat = append(flat, Flatten(batch.Operations)...)
			continue
		}

		flat = append(flat, op)
	}

	return flat
}

// OperationTimestamp returns the timestamp governing an operation in
// the log: an Add's own timestamp, a Delete's target timestamp (the
// last element of its path), and for a Batch the highest timestamp of
// its members (zero when empty).
func OperationTimestamp(op Operation) Timestamp {

	switch op := op.(type) {

	case *Add:
		return op.Timestamp

	case *Delete:
		if len(op.Path) == 0 {
			return RootTimestamp
		}
		return op.Path.anchor()

	case *Batch:
		max := RootTimestamp
		for _, sub := range op.Operations {
			if ts := OperationTimestamp(sub); ts > max {
				max = ts
			}
		}
		return max
	}

	return RootTimestamp
}
