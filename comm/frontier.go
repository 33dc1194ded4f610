package comm

import (
	"github.com/maca/crdt-graph/crdt"
)

// Structs

// Frontier tracks, per peer, how many entries of that peer's
// append-only operation log the owning replica has integrated. It
// plays the role a vector clock plays in a broadcast system, reduced
// to the pull-based exchange this package implements.
//
// The cursor is a log position rather than a timestamp: deletes are
// governed by their target's timestamp, so a timestamp high-water mark
// would skip a late delete of an old node. Log positions are stable
// because entries are never rewritten.
type Frontier struct {
	consumed map[crdt.ReplicaID]int
}

// Functions

// InitFrontier returns an empty initialized new frontier.
func InitFrontier() *Frontier {

	return &Frontier{
		consumed: make(map[crdt.ReplicaID]int),
	}
}

// Consumed returns how many of peer's log entries have been
// integrated, zero if the peer was never synced.
func (f *Frontier) Consumed(peer crdt.ReplicaID) int {
	return f.consumed[peer]
}

// Raise advances the cursor for peer to n. Stale positions never move
// the frontier backwards.
func (f *Frontier) Raise(peer crdt.ReplicaID, n int) {

	if n > f.consumed[peer] {
		f.consumed[peer] = n
	}
}
