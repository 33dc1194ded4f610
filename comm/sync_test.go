package comm

import (
	"context"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"

	"github.com/maca/crdt-graph/crdt"
	"github.com/maca/crdt-graph/replica"
)

// Functions

// TestInitMessage verifies round IDs are fresh per message.
func TestInitMessage(t *testing.T) {

	one := InitMessage()
	two := InitMessage()

	assert.NotEqual(t, "", one.ID)
	assert.NotEqual(t, one.ID, two.ID)
}

// TestFrontier verifies the per-peer consumption cursors.
func TestFrontier(t *testing.T) {

	f := InitFrontier()

	assert.Equal(t, 0, f.Consumed(3))

	f.Raise(3, 17)
	assert.Equal(t, 17, f.Consumed(3))

	// Stale positions never move the frontier backwards.
	f.Raise(3, 4)
	assert.Equal(t, 17, f.Consumed(3))

	assert.Equal(t, 0, f.Consumed(1))
}

// TestSyncRound verifies one pull round between two replicas.
func TestSyncRound(t *testing.T) {

	left, err := replica.NewService(0, 2)
	assert.Nil(t, err)

	right, err := replica.NewService(1, 2)
	assert.Nil(t, err)

	err = left.Batch([]crdt.Instruction{crdt.AddBranch("notes"), crdt.AddNode("first")})
	assert.Nil(t, err)

	syncer := InitSyncer(log.NewNopLogger(), right)

	msg := syncer.Request(left)
	assert.Equal(t, crdt.ReplicaID(0), msg.Sender)
	assert.Equal(t, 0, msg.Offset)
	assert.Equal(t, 2, len(msg.Operations))

	err = syncer.Integrate(context.Background(), msg)
	assert.Nil(t, err)

	// Both replicas answer identically now.
	leftOps := left.OperationsSince(crdt.RootTimestamp)
	notes := crdt.Path{crdt.OperationTimestamp(leftOps[0])}

	payload, ok := right.Get(notes)
	assert.True(t, ok)
	assert.Equal(t, "notes", payload)

	// The frontier moved past the suffix, the next request is empty.
	next := syncer.Request(left)
	assert.Equal(t, 2, next.Offset)
	assert.Equal(t, 0, len(next.Operations))

	// Redelivering the whole round is harmless.
	err = syncer.Integrate(context.Background(), msg)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(right.OperationsSince(crdt.RootTimestamp)))
}

// TestLateDeleteReachesPeer verifies that a delete of a long-existing
// node still flows: the cursor is a log position, and a timestamp mark
// would skip a delete governed by its old target.
func TestLateDeleteReachesPeer(t *testing.T) {

	left, err := replica.NewService(0, 2)
	assert.Nil(t, err)

	right, err := replica.NewService(1, 2)
	assert.Nil(t, err)

	rightSyncer := InitSyncer(log.NewNopLogger(), right)

	err = left.Batch([]crdt.Instruction{crdt.AddBranch("shopping"), crdt.AddNode("milk")})
	assert.Nil(t, err)
	assert.Nil(t, rightSyncer.SyncWith(context.Background(), left))

	shopping := crdt.Path{crdt.OperationTimestamp(left.OperationsSince(crdt.RootTimestamp)[0])}

	// The delete targets the oldest node in the tree.
	err = left.Batch([]crdt.Instruction{crdt.DeleteNode(shopping)})
	assert.Nil(t, err)

	assert.Nil(t, rightSyncer.SyncWith(context.Background(), left))

	_, ok := right.Get(shopping)
	assert.False(t, ok)
	assert.Equal(t, 3, len(right.OperationsSince(crdt.RootTimestamp)))
}

// TestConvergenceThroughSync verifies that concurrent editors converge
// once rounds have flowed in both directions.
func TestConvergenceThroughSync(t *testing.T) {

	left, err := replica.NewService(0, 2)
	assert.Nil(t, err)

	right, err := replica.NewService(1, 2)
	assert.Nil(t, err)

	leftSyncer := InitSyncer(log.NewNopLogger(), left)
	rightSyncer := InitSyncer(log.NewNopLogger(), right)

	// Shared history authored on the left.
	err = left.Batch([]crdt.Instruction{crdt.AddBranch("shopping")})
	assert.Nil(t, err)
	assert.Nil(t, rightSyncer.SyncWith(context.Background(), left))

	shopping := crdt.Path{crdt.OperationTimestamp(left.OperationsSince(crdt.RootTimestamp)[0])}

	// Concurrent edits: the left deletes the branch, the right starts a
	// sibling at the top level.
	err = left.Batch([]crdt.Instruction{crdt.DeleteNode(shopping)})
	assert.Nil(t, err)

	err = right.Batch([]crdt.Instruction{crdt.AddNode("errands")})
	assert.Nil(t, err)

	// One round in each direction settles both sides.
	assert.Nil(t, leftSyncer.SyncWith(context.Background(), right))
	assert.Nil(t, rightSyncer.SyncWith(context.Background(), left))

	_, leftOk := left.Get(shopping)
	_, rightOk := right.Get(shopping)
	assert.False(t, leftOk)
	assert.False(t, rightOk)

	assert.Equal(t,
		len(left.OperationsSince(crdt.RootTimestamp)),
		len(right.OperationsSince(crdt.RootTimestamp)),
	)
}

// TestThreeReplicaRelay verifies that rounds spread operations
// transitively: the third replica learns the first one's edits through
// the second.
func TestThreeReplicaRelay(t *testing.T) {

	first, err := replica.NewService(0, 4)
	assert.Nil(t, err)

	second, err := replica.NewService(1, 4)
	assert.Nil(t, err)

	third, err := replica.NewService(2, 4)
	assert.Nil(t, err)

	secondSyncer := InitSyncer(log.NewNopLogger(), second)
	thirdSyncer := InitSyncer(log.NewNopLogger(), third)

	err = first.Batch([]crdt.Instruction{crdt.AddBranch("inbox"), crdt.AddNode("hello")})
	assert.Nil(t, err)

	assert.Nil(t, secondSyncer.SyncWith(context.Background(), first))
	assert.Nil(t, thirdSyncer.SyncWith(context.Background(), second))

	inbox := crdt.Path{crdt.OperationTimestamp(first.OperationsSince(crdt.RootTimestamp)[0])}

	payload, ok := third.Get(inbox)
	assert.True(t, ok)
	assert.Equal(t, "inbox", payload)
}

// TestIntegrateAbortsOnCancel verifies context cancellation surfaces.
func TestIntegrateAbortsOnCancel(t *testing.T) {

	local, err := replica.NewService(0, 2)
	assert.Nil(t, err)

	remote, err := replica.NewService(1, 2)
	assert.Nil(t, err)

	err = remote.Batch([]crdt.Instruction{crdt.AddNode("a")})
	assert.Nil(t, err)

	syncer := InitSyncer(log.NewNopLogger(), local)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = syncer.SyncWith(ctx, remote)
	assert.NotNil(t, err)
	assert.Equal(t, 0, len(local.OperationsSince(crdt.RootTimestamp)))
}
