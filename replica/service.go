package replica

import (
	"github.com/maca/crdt-graph/crdt"
)

// Structs

type service struct {
	tree *crdt.Tree
}

// Interfaces

// Service defines the operations one engine replica offers to local
// callers and to the synchronization layer. It is the seam the logging
// and metrics decorators of this package wrap around.
type Service interface {

	// Replica returns the ID this replica mints timestamps for.
	Replica() crdt.ReplicaID

	// Apply feeds one fully-formed operation, usually received from a
	// remote replica, into the local tree.
	Apply(op crdt.Operation) error

	// Batch consumes deferred local edit instructions and applies the
	// synthesized operations atomically.
	Batch(instructions []crdt.Instruction) error

	// Get returns the payload at path if the addressed node exists and
	// is not tombstoned.
	Get(path crdt.Path) (string, bool)

	// LastOperation returns the operation associated with the most
	// recent successful Apply or Batch call.
	LastOperation() crdt.Operation

	// OperationsSince returns the logged operations governed by a
	// timestamp strictly greater than since, in log order.
	OperationsSince(since crdt.Timestamp) []crdt.Operation
}

// Functions

// NewService initializes the tree for one replica of a synchronization
// group and returns the plain, undecorated service around it.
func NewService(replica crdt.ReplicaID, maxReplicas uint64) (Service, error) {

	tree, err := crdt.InitTree(replica, maxReplicas)
	if err != nil {
		return nil, err
	}

	return &service{
		tree: tree,
	}, nil
}

func (s *service) Replica() crdt.ReplicaID {
	return s.tree.Replica()
}

func (s *service) Apply(op crdt.Operation) error {
	return s.tree.Apply(op)
}

func (s *service) Batch(instructions []crdt.Instruction) error {
	return s.tree.Batch(instructions)
}

func (s *service) Get(path crdt.Path) (string, bool) {
	return s.tree.Get(path)
}

func (s *service) LastOperation() crdt.Operation {
	return s.tree.LastOperation()
}

func (s *service) OperationsSince(since crdt.Timestamp) []crdt.Operation {
	return s.tree.OperationsSince(since)
}
