package crdt

import (
	"fmt"
	"math/bits"
)

// Structs

// Timestamp is a Lamport-like logical time with the minting replica's
// ID embedded in its low bits:
//
//	timestamp = (counter << k) | replica
//
// where k is fixed per tree from the maximum number of replicas. Two
// operations from different replicas can therefore never share a
// timestamp, and comparing raw Timestamp values yields the usual
// Lamport total order (counter first, replica ID as tie break).
//
// The zero Timestamp is reserved for the root node and doubles as the
// front-insertion sentinel in paths; no allocation ever produces it.
type Timestamp uint64

// RootTimestamp addresses the immortal root node of every tree. As the
// last element of a path it means "at the front of the children".
const RootTimestamp Timestamp = 0

// Clock allocates operation timestamps for one tree. It follows the two
// Lamport implementation rules: Tick increments the counter before
// minting (IR1), Observe advances the counter to at least the counter
// bits of a remotely received timestamp (IR2), so that later local
// allocations cannot collide with anything already observed.
//
// Not goroutine-safe, in line with the rest of the package.
type Clock struct {
	replica ReplicaID
	shift   uint
	counter uint64
}

// Functions

// InitClock returns a clock minting timestamps for the given replica.
// The width of the embedded replica field is ceil(log2(maxReplicas)),
// fixed for the lifetime of the tree. maxReplicas must be at least 1
// and the replica ID must fit the resulting field.
func InitClock(replica ReplicaID, maxReplicas uint64) (*Clock, error) {

	if maxReplicas < 1 {
		return nil, fmt.Errorf("maxReplicas must be at least 1, got %d", maxReplicas)
	}

	shift := uint(bits.Len64(maxReplicas - 1))

	if uint64(replica) >= maxReplicas {
		return nil, fmt.Errorf("replica ID %d out of range for %d replicas", replica, maxReplicas)
	}

	return &Clock{
		replica: replica,
		shift:   shift,
	}, nil
}

// Tick allocates a fresh timestamp, strictly greater than every
// timestamp this clock has produced or observed so far.
func (c *Clock) Tick() Timestamp {
	c.counter++
	return Timestamp((c.counter << c.shift) | uint64(c.replica))
}

// Observe feeds a remotely received timestamp into the clock. The
// counter advances to the counter bits of ts if those are ahead, which
// guarantees that the next Tick exceeds ts.
func (c *Clock) Observe(ts Timestamp) {

	counter := uint64(ts) >> c.shift

	if counter > c.counter {
		c.counter = counter
	}
}

// Counter extracts the counter bits of a timestamp minted under this
// clock's encoding.
func (c *Clock) Counter(ts Timestamp) uint64 {
	return uint64(ts) >> c.shift
}

// Replica extracts the replica ID embedded in a timestamp minted under
// this clock's encoding.
func (c *Clock) Replica(ts Timestamp) ReplicaID {
	return ReplicaID(uint64(ts) & ((1 << c.shift) - 1))
}
