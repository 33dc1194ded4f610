/*
Package comm synchronizes crdt-graph replicas by exchanging operation
log suffixes in-process. It deliberately stops short of any network
concern: a Message is a plain Go value, moving it between machines is
the job of whatever transport the embedding system already has.

Synchronization is pull-based anti-entropy. A Syncer remembers, per
peer, how many entries of that peer's append-only log it has already
integrated (the frontier). A round fetches the peer's full log, cuts
it at that position, and applies the remaining suffix locally. The
cursor is deliberately a log position and not a timestamp mark: a
delete is governed by its target's timestamp, so a timestamp cut
would skip a late delete of an old node, while log positions are
stable because entries are never rewritten. The engine's idempotence
makes redundant deliveries harmless, so the frontier may safely lag.
*/
package comm
