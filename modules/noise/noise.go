// Package noise provides seeded coherent 3D noise fields.
package noise

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	alpha   = 2
	beta    = 2
	octaves = 3

	// Spread of the random offset drawn for each field.
	offsetRange = 1000
)

// Settings describes how a field is sampled and remapped.
type Settings struct {
	// Scale applied to positions before sampling.
	Frequency float64

	// Output range. Raw noise is remapped from [-1, 1] into [Min, Max].
	Min float64
	Max float64
}

// Field is a deterministic, continuous 3D scalar field. A field is safe for
// concurrent reads.
type Field struct {
	Settings

	perlin *perlin.Perlin
	offset r3.Vec
}

// New creates a field whose permutation table and sampling offset are both
// drawn from rng, so two fields built from the same rng sequence are
// decorrelated while staying reproducible.
func New(rng *rand.Rand, s Settings) *Field {
	seed := rng.Int63()
	offset := r3.Vec{
		X: (rng.Float64() - 0.5) * offsetRange,
		Y: (rng.Float64() - 0.5) * offsetRange,
		Z: (rng.Float64() - 0.5) * offsetRange,
	}

	return &Field{
		Settings: s,
		perlin:   perlin.NewPerlin(alpha, beta, octaves, seed),
		offset:   offset,
	}
}

// Offset returns the fixed offset added to every sampled position.
func (f *Field) Offset() r3.Vec {
	return f.offset
}

// Raw returns the noise at frequency*p + offset, clamped to [-1, 1].
func (f *Field) Raw(p r3.Vec) float64 {
	q := r3.Add(r3.Scale(f.Frequency, p), f.offset)
	v := f.perlin.Noise3D(q.X, q.Y, q.Z)
	return math.Max(-1, math.Min(1, v))
}

// At returns the noise at p remapped into [Min, Max].
func (f *Field) At(p r3.Vec) float64 {
	t := (f.Raw(p) + 1) / 2
	return f.Min + t*(f.Max-f.Min)
}

// AtOffset samples the field at p shifted by a caller supplied offset. It is
// used to derive several independent channels from one field.
func (f *Field) AtOffset(p, offset r3.Vec) float64 {
	return f.At(r3.Add(p, offset))
}
