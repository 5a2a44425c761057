// Package octree implements a generic point octree over a fixed root volume.
//
// Nodes live in a single arena slice: the eight children of a node are stored
// contiguously and referenced by the index of the first one. Nodes are never
// re-parented or removed; a tree is built once by insertion and then queried.
package octree

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/models"
	"gonum.org/v1/gonum/spatial/r3"
)

const noChildren = -1

// Entry is a stored point with an optional payload.
type Entry[T any] struct {
	Point r3.Vec

	Payload    T
	HasPayload bool

	// Marker is set on the centroid entries added by pre-division. Markers
	// occupy bucket slots but are never reported by queries or counted in
	// sizes.
	Marker bool
}

// Options configures an octree.
type Options struct {
	// The number of entries a node holds before it subdivides.
	Capacity int

	// The depth at which nodes stop subdividing and accept any number of
	// entries. The root has depth 1.
	MaxDepth int

	// When set, a node that reaches exactly Capacity entries subdivides right
	// away and records a marker at its centroid, which yields evenly
	// subdivided grids instead of purely adaptive ones.
	PreDivide bool
}

func (o Options) validate() error {
	if o.Capacity < 1 {
		return errors.New("octree capacity must be at least 1").
			WithType(models.ErrTypeConfiguration).
			WithTag("capacity", o.Capacity)
	}
	if o.MaxDepth < 1 {
		return errors.New("octree max depth must be at least 1").
			WithType(models.ErrTypeConfiguration).
			WithTag("max_depth", o.MaxDepth)
	}
	return nil
}

type node[T any] struct {
	volume   models.Volume
	depth    int
	entries  []Entry[T]
	children int
	size     int
}

func (n *node[T]) subdivided() bool {
	return n.children != noChildren
}

// Octree is a spatial index of points carrying payloads of type T.
type Octree[T any] struct {
	opts  Options
	nodes []node[T]
}

// New creates an empty octree covering the given volume.
func New[T any](volume models.Volume, opts Options) (*Octree[T], error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if _, err := models.NewVolume(volume.Origin(), volume.Extent()); err != nil {
		return nil, err
	}

	return &Octree[T]{
		opts: opts,
		nodes: []node[T]{{
			volume:   volume,
			depth:    1,
			children: noChildren,
		}},
	}, nil
}

func (o *Octree[T]) Options() Options {
	return o.opts
}

func (o *Octree[T]) Volume() models.Volume {
	return o.nodes[0].volume
}

// Size returns the number of points inserted in the tree.
func (o *Octree[T]) Size() int {
	return o.nodes[0].size
}

// Root returns the root node.
func (o *Octree[T]) Root() Node[T] {
	return Node[T]{tree: o, index: 0}
}

// ChildCount returns the number of nodes below the root.
func (o *Octree[T]) ChildCount() int {
	return len(o.nodes) - 1
}

// Insert stores a point with a payload. It returns false, leaving the tree
// untouched, when the point is outside the root volume.
func (o *Octree[T]) Insert(p r3.Vec, payload T) bool {
	return o.insert(Entry[T]{Point: p, Payload: payload, HasPayload: true})
}

// InsertPoint stores a point without payload.
func (o *Octree[T]) InsertPoint(p r3.Vec) bool {
	return o.insert(Entry[T]{Point: p})
}

// InsertAll inserts points pairwise with payloads. Points past the end of
// payloads are stored without payload. It returns the number of points
// inserted.
func (o *Octree[T]) InsertAll(points []r3.Vec, payloads []T) int {
	var inserted int
	for i, p := range points {
		e := Entry[T]{Point: p}
		if i < len(payloads) {
			e.Payload = payloads[i]
			e.HasPayload = true
		}
		if o.insert(e) {
			inserted++
		}
	}
	return inserted
}

func (o *Octree[T]) insert(e Entry[T]) bool {
	if !o.nodes[0].volume.Contains(e.Point) {
		return false
	}
	o.insertAt(0, e)
	return true
}

func (o *Octree[T]) insertAt(i int, e Entry[T]) {
	for {
		n := &o.nodes[i]
		n.size++

		if !n.subdivided() {
			if len(n.entries) < o.opts.Capacity || n.depth >= o.opts.MaxDepth {
				n.entries = append(n.entries, e)
				if o.opts.PreDivide && len(n.entries) == o.opts.Capacity && n.depth < o.opts.MaxDepth {
					o.preDivide(i)
				}
				return
			}
			o.subdivide(i)
		}

		// subdivide grows the arena, so the node is read again.
		n = &o.nodes[i]
		i = n.children + n.volume.Octant(e.Point)
	}
}

// subdivide creates the eight children of a node and moves its entries down
// into them.
func (o *Octree[T]) subdivide(i int) {
	first := len(o.nodes)
	parent := o.nodes[i]

	for octant := 0; octant < 8; octant++ {
		o.nodes = append(o.nodes, node[T]{
			volume:   parent.volume.Child(octant),
			depth:    parent.depth + 1,
			children: noChildren,
		})
	}
	o.nodes[i].children = first
	o.nodes[i].entries = nil

	for _, e := range parent.entries {
		o.insertAt(first+parent.volume.Octant(e.Point), e)
	}
}

func (o *Octree[T]) preDivide(i int) {
	o.subdivide(i)

	n := &o.nodes[i]
	n.entries = append(n.entries, Entry[T]{
		Point:  n.volume.Center(),
		Marker: true,
	})
}

// LowestNode returns the deepest node containing p, which is always an
// unsubdivided one. ok is false when p is outside the root volume.
func (o *Octree[T]) LowestNode(p r3.Vec) (Node[T], bool) {
	return o.NodeAtLevel(p, o.opts.MaxDepth)
}

// NodeAtLevel descends at most level subdivisions towards p, stopping early at
// unsubdivided nodes. Level 0 is the root.
func (o *Octree[T]) NodeAtLevel(p r3.Vec, level int) (Node[T], bool) {
	if !o.nodes[0].volume.Contains(p) {
		return Node[T]{}, false
	}

	i := 0
	for l := 0; l < level && o.nodes[i].subdivided(); l++ {
		i = o.nodes[i].children + o.nodes[i].volume.Octant(p)
	}
	return Node[T]{tree: o, index: i}, true
}
