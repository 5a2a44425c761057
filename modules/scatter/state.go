package scatter

import (
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/octree"
	"gonum.org/v1/gonum/spatial/r3"
)

// State holds the points of the last scatter request of a connection and the
// index built over them. Payloads are positions in the point list.
type State struct {
	points []r3.Vec
	index  *octree.Octree[int]
}

// Reset replaces the state with a new generation.
func (s *State) Reset(points []r3.Vec, index *octree.Octree[int]) {
	s.points = points
	s.index = index
}

func (s *State) Points() []r3.Vec {
	return s.points
}

func (s *State) Indexed() bool {
	return s.index != nil
}

// Query returns the indexed points inside the sphere and their positions in
// the point list. ok is false when no index was built.
func (s *State) Query(sphere models.Sphere) (points []r3.Vec, indices []int, ok bool) {
	if s.index == nil {
		return nil, nil, false
	}

	for _, e := range s.index.SphereQuery(sphere) {
		points = append(points, e.Point)
		indices = append(indices, e.Payload)
	}
	return points, indices, true
}

func (s *State) Clear() {
	s.points = nil
	s.index = nil
}
