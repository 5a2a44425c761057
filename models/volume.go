package models

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Volume is an axis-aligned box. It is stored as min/max corners so that
// children produced by Child share their boundaries exactly with their parent
// and siblings.
type Volume struct {
	Min r3.Vec
	Max r3.Vec
}

// NewVolume returns the volume spanning origin to origin+extent. Every extent
// component must be strictly positive.
func NewVolume(origin, extent r3.Vec) (Volume, error) {
	if !(extent.X > 0 && extent.Y > 0 && extent.Z > 0) {
		return Volume{}, errors.New("volume extents must be positive").
			WithType(ErrTypeConfiguration).
			WithTag("extent", extent)
	}

	return Volume{
		Min: origin,
		Max: r3.Add(origin, extent),
	}, nil
}

func (v Volume) Origin() r3.Vec {
	return v.Min
}

func (v Volume) Extent() r3.Vec {
	return r3.Sub(v.Max, v.Min)
}

func (v Volume) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(v.Min, v.Max))
}

// Contains reports whether p lies inside the volume, boundaries included.
func (v Volume) Contains(p r3.Vec) bool {
	return p.X >= v.Min.X && p.X <= v.Max.X &&
		p.Y >= v.Min.Y && p.Y <= v.Max.Y &&
		p.Z >= v.Min.Z && p.Z <= v.Max.Z
}

// Octant returns the index ix + 2*(iy + 2*iz) of the child volume holding p,
// where each of ix, iy and iz is floor(2*(p-origin)/extent) clamped to [0, 1].
func (v Volume) Octant(p r3.Vec) int {
	c := v.Center()

	var octant int
	if p.X >= c.X {
		octant++
	}
	if p.Y >= c.Y {
		octant += 2
	}
	if p.Z >= c.Z {
		octant += 4
	}
	return octant
}

// Child returns the octant sub-volume at the given index. The eight children
// tile the parent without gap or overlap.
func (v Volume) Child(octant int) Volume {
	c := v.Center()
	child := Volume{Min: v.Min, Max: c}

	if octant&1 != 0 {
		child.Min.X, child.Max.X = c.X, v.Max.X
	}
	if octant&2 != 0 {
		child.Min.Y, child.Max.Y = c.Y, v.Max.Y
	}
	if octant&4 != 0 {
		child.Min.Z, child.Max.Z = c.Z, v.Max.Z
	}
	return child
}

// IntersectsSphere reports whether the sphere touches the volume.
func (v Volume) IntersectsSphere(s Sphere) bool {
	closest := r3.Vec{
		X: math.Max(v.Min.X, math.Min(s.Center.X, v.Max.X)),
		Y: math.Max(v.Min.Y, math.Min(s.Center.Y, v.Max.Y)),
		Z: math.Max(v.Min.Z, math.Min(s.Center.Z, v.Max.Z)),
	}
	return r3.Norm2(r3.Sub(closest, s.Center)) <= s.Radius*s.Radius
}
