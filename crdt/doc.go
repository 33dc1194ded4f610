/*
Package crdt implements an operation-based replicated ordered tree, the
CmRDT upon that crdt-graph is built. Replicas concurrently edit a
hierarchical, ordered tree of opaque payloads and converge to identical
state once every replica has observed every operation, independent of
delivery order or duplication.

CAUTION! Consider these two requirements:
  - Convergence is guaranteed by the commutativity and idempotence of
    Apply, not by delivery guarantees. Operations may arrive in any order
    and arbitrarily often, but replicas only agree once each of them has
    received every operation, as provided by, for example, this module's
    package comm.
  - Access to the functions this package provides is expected to be
    synchronized explicitly by some outside measures, e.g. by wrapping
    calls to this package with a mutex lock if concurrent access is
    possible. This package does not(!) synchronize access by itself.

Nodes are addressed by paths of timestamps and ordered among their
siblings by an anchor rule: every Add lands immediately after the sibling
named by the last element of its path, and concurrent Adds at the same
anchor settle with the higher timestamp closer to the anchor. Deleted
nodes stay behind as tombstones so that late-arriving operations still
resolve.
*/
package crdt
