package crdt

// Structs

// Node is one element of the replicated tree. Every node except the
// root carries the timestamp of the Add operation that created it, an
// opaque payload, and a tombstone flag. Children are kept in their
// converged sibling order; the parent back-reference exists for path
// reconstruction and is non-owning.
type Node struct {
	timestamp Timestamp
	payload   string
	deleted   bool
	children  []*Node
	parent    *Node
}

// Functions

// initNode constructs a fresh, live node. The parent link is set when
// the node is spliced into its parent's children.
func initNode(ts Timestamp, payload string) *Node {

	return &Node{
		timestamp: ts,
		payload:   payload,
	}
}

// Timestamp returns the node's unique timestamp. The root returns
// RootTimestamp.
func (n *Node) Timestamp() Timestamp {
	return n.timestamp
}

// Payload returns the node's payload. The second return value is false
// for the root and for tombstoned nodes, whose payloads are no longer
// observable.
func (n *Node) Payload() (string, bool) {

	if n.deleted || n.timestamp == RootTimestamp {
		return "", false
	}

	return n.payload, true
}

// Deleted reports whether the node is a tombstone.
func (n *Node) Deleted() bool {
	return n.deleted
}

// Parent returns the owning parent node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in converged sibling order,
// tombstones included. The returned slice is the node's own storage and
// must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Child locates the direct child carrying the supplied timestamp.
// Returns nil if no such child exists.
func (n *Node) Child(ts Timestamp) *Node {

	for _, child := range n.children {

		if child.timestamp == ts {
			return child
		}
	}

	return nil
}

// Path reconstructs the node's address by walking the parent
// back-references up to the root. The root's path is empty.
func (n *Node) Path() Path {

	if n.parent == nil {
		return Path{}
	}

	return append(n.parent.Path(), n.timestamp)
}

// markDeleted turns the node into a tombstone. The stored payload is
// retained so that redelivered Adds still recognize their duplicate,
// but Payload no longer exposes it.
func (n *Node) markDeleted() {
	n.deleted = true
}

// insertChild splices child into n's children relative to anchor: at
// the front for the zero anchor, otherwise immediately after the
// sibling carrying the anchor timestamp. Concurrent inserts at the same
// anchor settle in descending timestamp order, so the scan steps over
// siblings with a higher timestamp than the new child before splicing.
// Returns false if a non-zero anchor does not name an existing sibling.
func (n *Node) insertChild(child *Node, anchor Timestamp) bool {

	at := 0

	if anchor != RootTimestamp {

		anchorNode := n.Child(anchor)
		if anchorNode == nil {
			return false
		}

		for i, sibling := range n.children {

			if sibling == anchorNode {
				at = i + 1
				break
			}
		}
	}

	for at < len(n.children) && n.children[at].timestamp > child.timestamp {
		at++
	}

	n.children = append(n.children, nil)
	copy(n.children[(at+1):], n.children[at:])
	n.children[at] = child
	child.parent = n

	return true
}

// clone deep-copies the node's subtree, registering every copy in the
// supplied index. Used to stage batches so that a failing batch leaves
// the live tree untouched.
func (n *Node) clone(parent *Node, index map[Timestamp]*Node) *Node {

	c := &Node{
		timestamp: n.timestamp,
		payload:   n.payload,
		deleted:   n.deleted,
		parent:    parent,
	}

	if len(n.children) > 0 {

		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			c.children[i] = child.clone(c, index)
		}
	}

	index[c.timestamp] = c

	return c
}
