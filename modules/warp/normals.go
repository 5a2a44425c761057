package warp

import (
	"github.com/aukilabs/sprout/models"
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// RecomputeNormals sets each vertex normal to the normalized sum of the
// area weighted normals of the triangles sharing it. Vertices touching only
// degenerate triangles get a zero normal.
func RecomputeNormals(g *models.Grid) {
	if len(g.Normals) != len(g.Positions) {
		g.Normals = make([]float32, len(g.Positions))
	}
	clear(g.Normals)

	for t := 0; t+2 < len(g.Indices); t += 3 {
		ia, ib, ic := g.Indices[t], g.Indices[t+1], g.Indices[t+2]
		a := position(g, ia)
		n := r3.Cross(r3.Sub(position(g, ib), a), r3.Sub(position(g, ic), a))

		for _, i := range [3]uint32{ia, ib, ic} {
			g.Normals[i*3] += float32(n.X)
			g.Normals[i*3+1] += float32(n.Y)
			g.Normals[i*3+2] += float32(n.Z)
		}
	}

	for i := 0; i+2 < len(g.Normals); i += 3 {
		normalize(g.Normals[i : i+3])
	}
}

func position(g *models.Grid, i uint32) r3.Vec {
	return r3.Vec{
		X: float64(g.Positions[i*3]),
		Y: float64(g.Positions[i*3+1]),
		Z: float64(g.Positions[i*3+2]),
	}
}

// normalize scales a float32 xyz triple to unit length in place. Zero
// triples are left untouched.
func normalize(v []float32) {
	lenSq := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	if !(lenSq > 0) || math32.IsInf(lenSq, 0) {
		return
	}
	inv := 1 / math32.Sqrt(lenSq)
	v[0] *= inv
	v[1] *= inv
	v[2] *= inv
}
