package models

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

type Sphere struct {
	Center r3.Vec
	Radius float64
}

func (s Sphere) Contains(p r3.Vec) bool {
	return r3.Norm2(r3.Sub(p, s.Center)) <= s.Radius*s.Radius
}

type Box struct {
	Min r3.Vec
	Max r3.Vec
}

func (b Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

type DomainKind int

const (
	DomainBox DomainKind = iota
	DomainSphere
)

func (k DomainKind) String() string {
	switch k {
	case DomainBox:
		return "box"
	case DomainSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Domain is a region points are sampled from. Only the field matching Kind is
// meaningful.
type Domain struct {
	Kind   DomainKind
	Box    Box
	Sphere Sphere
}

// NewBoxDomain returns a box domain. Inverted bounds are rejected; a flat axis
// (min == max) is allowed.
func NewBoxDomain(min, max r3.Vec) (Domain, error) {
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return Domain{}, errors.New("box domain bounds are inverted").
			WithType(ErrTypeConfiguration).
			WithTag("min", min).
			WithTag("max", max)
	}
	return Domain{Kind: DomainBox, Box: Box{Min: min, Max: max}}, nil
}

func NewSphereDomain(center r3.Vec, radius float64) (Domain, error) {
	if !(radius > 0) {
		return Domain{}, errors.New("sphere domain radius must be positive").
			WithType(ErrTypeConfiguration).
			WithTag("radius", radius)
	}
	return Domain{Kind: DomainSphere, Sphere: Sphere{Center: center, Radius: radius}}, nil
}

func (d Domain) Contains(p r3.Vec) bool {
	switch d.Kind {
	case DomainSphere:
		return d.Sphere.Contains(p)
	default:
		return d.Box.Contains(p)
	}
}

// Bounds returns the smallest volume enclosing the domain. Domains that are
// flat along an axis have no valid bounding volume.
func (d Domain) Bounds() (Volume, error) {
	switch d.Kind {
	case DomainSphere:
		r := r3.Vec{X: d.Sphere.Radius, Y: d.Sphere.Radius, Z: d.Sphere.Radius}
		return NewVolume(r3.Sub(d.Sphere.Center, r), r3.Scale(2, r))
	default:
		return NewVolume(d.Box.Min, r3.Sub(d.Box.Max, d.Box.Min))
	}
}
