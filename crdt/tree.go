package crdt

import (
	"github.com/pkg/errors"
)

// Structs

// Tree is one replica's copy of the replicated ordered tree. It owns
// the root node, the append-only operation log, and the timestamp
// allocator. A Tree is a pure in-memory value; nothing requires
// explicit release.
type Tree struct {
	replica ReplicaID
	clock   *Clock
	root    *Node
	index   map[Timestamp]*Node
	log     []Operation
	lastOp  Operation
}

// cursor tracks where the next instruction of a Batch call lands: the
// parent whose children are being edited and the anchor sibling the
// next Add attaches after. One cursor exists per Batch call.
type cursor struct {
	parent *Node
	anchor Timestamp
}

// instructionKind enumerates the deferred local builders.
type instructionKind int

// Constants

const (
	instructionAdd instructionKind = iota
	instructionAddBranch
	instructionDelete
)

// Structs

// Instruction is a deferred local edit. Building one does not touch any
// tree state; the operation is synthesized against the current tree and
// a fresh timestamp only once the instruction is consumed by Batch.
type Instruction struct {
	kind    instructionKind
	payload string
	path    Path
}

// Functions

// AddNode builds an instruction inserting a node after the most
// recently inserted sibling of the running batch, or at the front of
// the current parent's children at the start of one.
func AddNode(payload string) Instruction {

	return Instruction{
		kind:    instructionAdd,
		payload: payload,
	}
}

// AddBranch builds an instruction inserting a node like AddNode does,
// but subsequent instructions of the same batch target the children of
// the freshly inserted node.
func AddBranch(payload string) Instruction {

	return Instruction{
		kind:    instructionAddBranch,
		payload: payload,
	}
}

// DeleteNode builds an instruction tombstoning the node at path.
func DeleteNode(path Path) Instruction {

	return Instruction{
		kind: instructionDelete,
		path: path,
	}
}

// InitTree constructs a tree holding only the immortal root, with an
// empty operation log and a timestamp allocator for the given replica.
// maxReplicas fixes the width of the replica field embedded in every
// timestamp and must be identical across all replicas of one tree.
func InitTree(replica ReplicaID, maxReplicas uint64) (*Tree, error) {

	clock, err := InitClock(replica, maxReplicas)
	if err != nil {
		return nil, err
	}

	root := &Node{timestamp: RootTimestamp}

	return &Tree{
		replica: replica,
		clock:   clock,
		root:    root,
		index:   map[Timestamp]*Node{RootTimestamp: root},
		lastOp:  &Batch{},
	}, nil
}

// Replica returns the ID this tree mints timestamps for.
func (t *Tree) Replica() ReplicaID {
	return t.replica
}

// Root returns the immortal root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Apply feeds one fully-formed operation, usually received from a
// remote replica, into the tree. Duplicate deliveries succeed without
// effect. A Batch applies atomically: its first failing operation
// discards all of its changes. On failure the tree is unchanged.
func (t *Tree) Apply(op Operation) error {

	switch op := op.(type) {

	case *Add:

		changed, err := t.applyAdd(op)
		if err != nil {
			return err
		}

		if changed {
			t.log = append(t.log, op)
		}
		t.lastOp = op

		return nil

	case *Delete:

		changed, err := t.applyDelete(op)
		if err != nil {
			return err
		}

		if changed {
			t.log = append(t.log, op)
		}
		t.lastOp = op

		return nil

	case *Batch:

		effective, err := t.applyOps(Flatten(op.Operations))
		if err != nil {
			return err
		}

		t.lastOp = &Batch{Operations: effective}

		return nil
	}

	return errors.Errorf("unsupported operation type %T", op)
}

// Batch consumes a sequence of deferred instructions, synthesizes the
// corresponding operations against the current tree state, and applies
// them atomically. The first failure discards everything, including the
// timestamps allocated so far. On success LastOperation reports the
// Batch of the operations that actually changed state.
func (t *Tree) Batch(instructions []Instruction) error {

	scratch := t.clone()

	cur := cursor{
		parent: scratch.root,
		anchor: RootTimestamp,
	}

	effective := make([]Operation, 0, len(instructions))

	for _, in := range instructions {

		op, err := in.synthesize(scratch, &cur)
		if err != nil {
			return err
		}

		var changed bool

		switch op := op.(type) {

		case *Add:

			changed, err = scratch.applyAdd(op)
			if err != nil {
				return err
			}

			// Shift the cursor: the next Add of this batch anchors at
			// the node just inserted, or starts fresh inside it.
			if in.kind == instructionAddBranch {
				cur.parent = scratch.index[op.Timestamp]
				cur.anchor = RootTimestamp
			} else {
				cur.anchor = op.Timestamp
			}

		case *Delete:

			changed, err = scratch.applyDelete(op)
			if err != nil {
				return err
			}
		}

		if changed {
			effective = append(effective, op)
		}
	}

	t.commit(scratch, effective)
	t.lastOp = &Batch{Operations: effective}

	return nil
}

// Get returns the payload at path if the addressed node exists and is
// not tombstoned.
func (t *Tree) Get(path Path) (string, bool) {

	node, err := t.resolve(path)
	if err != nil {
		return "", false
	}

	return node.Payload()
}

// LastOperation returns the operation associated with the most recent
// successful Apply or Batch call: the applied operation itself, or a
// Batch of the effective operations when the call was a batch, even of
// length one. A fresh tree reports the empty Batch.
func (t *Tree) LastOperation() Operation {
	return t.lastOp
}

// OperationsSince returns every logged operation whose governing
// timestamp is strictly greater than since, in log order. The log holds
// individual Adds and Deletes only, so the result carries no Batch
// wrappers. OperationsSince(RootTimestamp) returns the full log.
func (t *Tree) OperationsSince(since Timestamp) []Operation {

	ops := make([]Operation, 0, len(t.log))

	for _, op := range t.log {

		if OperationTimestamp(op) > since {
			ops = append(ops, op)
		}
	}

	return ops
}

// synthesize turns a deferred instruction into a concrete operation
// against the supplied tree and cursor.
func (in Instruction) synthesize(t *Tree, cur *cursor) (Operation, error) {

	switch in.kind {

	case instructionAdd, instructionAddBranch:

		return &Add{
			Replica:   t.replica,
			Timestamp: t.clock.Tick(),
			Path:      append(cur.parent.Path(), cur.anchor),
			Payload:   in.payload,
		}, nil

	case instructionDelete:

		return &Delete{
			Replica: t.replica,
			Path:    in.path,
		}, nil
	}

	return nil, errors.Errorf("unknown instruction kind %d", in.kind)
}

// resolve walks path from the root, descending into the child carrying
// each segment's timestamp. Tombstones resolve like live nodes.
func (t *Tree) resolve(path Path) (*Node, error) {

	node := t.root

	for i, ts := range path {

		child := node.Child(ts)
		if child == nil {
			return nil, errors.Wrapf(ErrNotFound, "path %s does not resolve at segment %d", path, i)
		}

		node = child
	}

	return node, nil
}

// applyAdd validates and executes one Add against the tree. It reports
// whether state changed; a redelivered duplicate succeeds unchanged,
// also once its parent has been tombstoned.
func (t *Tree) applyAdd(op *Add) (bool, error) {

	if len(op.Path) == 0 {
		return false, errors.Wrap(ErrNotFound, "add requires a non-empty path")
	}

	if op.Timestamp == RootTimestamp {
		return false, errors.Wrap(ErrTimestampCollision, "the zero timestamp is reserved for the root")
	}

	parent, err := t.resolve(op.Path.prefix())
	if err != nil {
		return false, err
	}

	if dup := parent.Child(op.Timestamp); dup != nil {

		if dup.payload == op.Payload {
			return false, nil
		}

		return false, errors.Wrapf(ErrTimestampCollision, "timestamp %d taken under %s with different payload", op.Timestamp, op.Path.prefix())
	}

	if parent.Deleted() {
		return false, errors.Wrapf(ErrParentDeleted, "no adds below tombstone %d", parent.Timestamp())
	}

	if _, taken := t.index[op.Timestamp]; taken {
		return false, errors.Wrapf(ErrTimestampCollision, "timestamp %d already in use elsewhere in the tree", op.Timestamp)
	}

	child := initNode(op.Timestamp, op.Payload)

	if !parent.insertChild(child, op.Path.anchor()) {
		return false, errors.Wrapf(ErrNotFound, "anchor %d not among the children of %s", op.Path.anchor(), op.Path.prefix())
	}

	t.index[op.Timestamp] = child
	t.clock.Observe(op.Timestamp)

	return true, nil
}

// applyDelete validates and executes one Delete against the tree. It
// reports whether state changed; tombstoning a tombstone succeeds
// unchanged.
func (t *Tree) applyDelete(op *Delete) (bool, error) {

	if len(op.Path) == 0 {
		return false, errors.Wrap(ErrNotFound, "the root cannot be deleted")
	}

	node, err := t.resolve(op.Path)
	if err != nil {
		return false, err
	}

	if node.Deleted() {
		return false, nil
	}

	node.markDeleted()

	return true, nil
}

// applyOps stages a flattened operation sequence on a scratch copy and
// commits only if every operation succeeds. Returns the operations that
// changed state, already appended to the log.
func (t *Tree) applyOps(ops []Operation) ([]Operation, error) {

	if len(ops) == 0 {
		return nil, nil
	}

	scratch := t.clone()
	effective := make([]Operation, 0, len(ops))

	for _, op := range ops {

		var changed bool
		var err error

		switch op := op.(type) {

		case *Add:
			changed, err = scratch.applyAdd(op)

		case *Delete:
			changed, err = scratch.applyDelete(op)

		default:
			err = errors.Errorf("unsupported operation type %T inside batch", op)
		}

		if err != nil {
			return nil, err
		}

		if changed {
			effective = append(effective, op)
		}
	}

	t.commit(scratch, effective)

	return effective, nil
}

// clone deep-copies the tree's node structure and allocator so that a
// batch can stage its changes without touching the live tree. The log
// is not carried over; commit appends the staged batch's effective
// operations to the live log.
func (t *Tree) clone() *Tree {

	index := make(map[Timestamp]*Node, len(t.index))
	clock := *t.clock

	return &Tree{
		replica: t.replica,
		clock:   &clock,
		root:    t.root.clone(nil, index),
		index:   index,
		lastOp:  t.lastOp,
	}
}

// commit swaps the staged state in and extends the log.
func (t *Tree) commit(scratch *Tree, effective []Operation) {

	t.root = scratch.root
	t.index = scratch.index
	t.clock = scratch.clock
	t.log = append(t.log, effective...)
}
