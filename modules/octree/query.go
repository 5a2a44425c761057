package octree

import (
	"github.com/aukilabs/sprout/models"
	"gonum.org/v1/gonum/spatial/r3"
)

// TraverseNodes calls fn on every node in pre-order, starting with the root.
// Returning false from fn skips the subtree of the visited node.
func (o *Octree[T]) TraverseNodes(fn func(Node[T]) bool) {
	root := o.Root()
	if fn(root) {
		root.TraverseChildren(fn)
	}
}

// TraverseChildren calls fn on every node below the root in pre-order.
func (o *Octree[T]) TraverseChildren(fn func(Node[T]) bool) {
	o.Root().TraverseChildren(fn)
}

// TraverseEntries calls fn on every stored entry in pre-order. Traversal stops
// when fn returns false.
func (o *Octree[T]) TraverseEntries(fn func(Entry[T]) bool) {
	stopped := false
	o.TraverseNodes(func(n Node[T]) bool {
		if stopped {
			return false
		}
		for _, e := range n.get().entries {
			if e.Marker {
				continue
			}
			if !fn(e) {
				stopped = true
				return false
			}
		}
		return !stopped
	})
}

// LeafNodes returns the nodes whose own bucket holds no entry. Subdivided nodes
// that pushed all their points down to children are included.
func (o *Octree[T]) LeafNodes() []Node[T] {
	var leaves []Node[T]
	o.TraverseNodes(func(n Node[T]) bool {
		if len(n.get().entries) == 0 {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}

// SphereQuery returns the entries inside the sphere, boundary included, in
// pre-order of the nodes holding them.
func (o *Octree[T]) SphereQuery(s models.Sphere) []Entry[T] {
	var res []Entry[T]
	o.sphereQuery(s, func(e Entry[T]) {
		res = append(res, e)
	})
	return res
}

// SphereQueryPoints is SphereQuery returning only the points.
func (o *Octree[T]) SphereQueryPoints(s models.Sphere) []r3.Vec {
	var res []r3.Vec
	o.sphereQuery(s, func(e Entry[T]) {
		res = append(res, e.Point)
	})
	return res
}

// SphereQueryPayloads is SphereQuery returning only the payloads. Matching
// entries without payload are left out.
func (o *Octree[T]) SphereQueryPayloads(s models.Sphere) []T {
	var res []T
	o.sphereQuery(s, func(e Entry[T]) {
		if e.HasPayload {
			res = append(res, e.Payload)
		}
	})
	return res
}

func (o *Octree[T]) sphereQuery(s models.Sphere, collect func(Entry[T])) {
	o.TraverseNodes(func(n Node[T]) bool {
		nd := n.get()
		if !nd.volume.IntersectsSphere(s) {
			return false
		}

		for _, e := range nd.entries {
			if !e.Marker && s.Contains(e.Point) {
				collect(e)
			}
		}
		return true
	})
}
