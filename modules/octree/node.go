package octree

import (
	"github.com/aukilabs/sprout/models"
)

// Node is a read-only view of an octree node. It stays valid until the next
// insertion into its tree.
type Node[T any] struct {
	tree  *Octree[T]
	index int
}

func (n Node[T]) get() *node[T] {
	return &n.tree.nodes[n.index]
}

// IsZero reports whether the node does not point to any tree.
func (n Node[T]) IsZero() bool {
	return n.tree == nil
}

func (n Node[T]) Volume() models.Volume {
	return n.get().volume
}

// Depth returns the depth of the node. The root has depth 1.
func (n Node[T]) Depth() int {
	return n.get().depth
}

// Size returns the number of points inserted at or below the node.
func (n Node[T]) Size() int {
	return n.get().size
}

func (n Node[T]) IsSubdivided() bool {
	return n.get().subdivided()
}

// Entries returns the points held by the node itself, markers excluded.
func (n Node[T]) Entries() []Entry[T] {
	raw := n.get().entries
	entries := make([]Entry[T], 0, len(raw))
	for _, e := range raw {
		if !e.Marker {
			entries = append(entries, e)
		}
	}
	return entries
}

// Bucket returns the raw entries of the node, markers included.
func (n Node[T]) Bucket() []Entry[T] {
	return n.get().entries
}

// Children returns the eight children ordered by octant index, or nil when the
// node is not subdivided.
func (n Node[T]) Children() []Node[T] {
	first := n.get().children
	if first == noChildren {
		return nil
	}

	children := make([]Node[T], 8)
	for i := range children {
		children[i] = Node[T]{tree: n.tree, index: first + i}
	}
	return children
}

// Child returns the child at the given octant index.
func (n Node[T]) Child(octant int) (Node[T], bool) {
	first := n.get().children
	if first == noChildren || octant < 0 || octant > 7 {
		return Node[T]{}, false
	}
	return Node[T]{tree: n.tree, index: first + octant}, true
}

// ChildCount returns the number of nodes below the node.
func (n Node[T]) ChildCount() int {
	var count int
	n.TraverseChildren(func(Node[T]) bool {
		count++
		return true
	})
	return count
}

// TraverseChildren calls fn on every descendant of the node in pre-order.
// Returning false from fn skips the subtree of the visited node.
func (n Node[T]) TraverseChildren(fn func(Node[T]) bool) {
	for _, c := range n.Children() {
		if fn(c) {
			c.TraverseChildren(fn)
		}
	}
}
