package models

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a flat mesh of HeightSegments rows by WidthSegments columns. Vertex
// (sx, sy) lives at index sx + sy*WidthSegments of the row-major position and
// normal buffers, three float32 per vertex.
type Grid struct {
	WidthSegments  int
	HeightSegments int

	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// NewGrid returns a pristine unit grid lying in the XY plane, centered on X
// and going from 0 to 1 on Y, with normals facing +Z.
func NewGrid(widthSegments, heightSegments int) (*Grid, error) {
	if widthSegments < 1 || heightSegments < 1 {
		return nil, errors.New("grid needs at least one row and one column").
			WithType(ErrTypeConfiguration).
			WithTag("width_segments", widthSegments).
			WithTag("height_segments", heightSegments)
	}

	count := widthSegments * heightSegments
	g := &Grid{
		WidthSegments:  widthSegments,
		HeightSegments: heightSegments,
		Positions:      make([]float32, count*3),
		Normals:        make([]float32, count*3),
	}
	g.Reset()

	for sy := 0; sy < heightSegments-1; sy++ {
		for sx := 0; sx < widthSegments-1; sx++ {
			a := uint32(g.Index(sx, sy))
			b := uint32(g.Index(sx+1, sy))
			c := uint32(g.Index(sx, sy+1))
			d := uint32(g.Index(sx+1, sy+1))
			g.Indices = append(g.Indices, a, b, d, a, d, c)
		}
	}
	return g, nil
}

// Reset restores the pristine flat layout.
func (g *Grid) Reset() {
	for sy := 0; sy < g.HeightSegments; sy++ {
		for sx := 0; sx < g.WidthSegments; sx++ {
			g.SetVertex(sx, sy, r3.Vec{
				X: fraction(sx, g.WidthSegments) - 0.5,
				Y: fraction(sy, g.HeightSegments),
			})

			i := g.Index(sx, sy) * 3
			g.Normals[i] = 0
			g.Normals[i+1] = 0
			g.Normals[i+2] = 1
		}
	}
}

func (g *Grid) Index(sx, sy int) int {
	return sx + sy*g.WidthSegments
}

func (g *Grid) VertexCount() int {
	return g.WidthSegments * g.HeightSegments
}

func (g *Grid) Vertex(sx, sy int) r3.Vec {
	i := g.Index(sx, sy) * 3
	return r3.Vec{
		X: float64(g.Positions[i]),
		Y: float64(g.Positions[i+1]),
		Z: float64(g.Positions[i+2]),
	}
}

func (g *Grid) SetVertex(sx, sy int, v r3.Vec) {
	i := g.Index(sx, sy) * 3
	g.Positions[i] = float32(v.X)
	g.Positions[i+1] = float32(v.Y)
	g.Positions[i+2] = float32(v.Z)
}

func fraction(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}
