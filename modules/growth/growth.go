// Package growth builds skeletons: chains of oriented segments following a
// noise driven, force biased growth path.
package growth

import (
	"math"
	"math/rand"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/noise"
	"github.com/aukilabs/sprout/modules/sampling"
	"gonum.org/v1/gonum/spatial/r3"
)

// Offsets used to read three decorrelated channels from the direction noise
// field.
var channelOffsets = [3]r3.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 137.31, Y: -41.77, Z: 291.03},
	{X: -263.9, Y: 188.41, Z: -77.12},
}

// Forces weights the contributions summed into each new growth direction.
// Every force is evaluated at the normalized progress n in [0, 1].
type Forces struct {
	// Weight of the previous direction.
	Direction models.Param

	// Weight of the pull against Config.Gravity.
	Gravity models.Param

	// Per-axis weight of the direction noise.
	Turn models.VecParam

	// Weight of a random unit vector scaled by a uniform draw.
	Random models.Param

	// Scale of the roll angle accumulated from the twist noise.
	Twist models.Param
}

type Config struct {
	// Total skeleton length.
	Height float64

	// The number of segments, start segment included.
	HeightSegments int

	Gravity        r3.Vec
	StartDirection r3.Vec

	Forces         Forces
	DirectionNoise noise.Settings
	TwistNoise     noise.Settings
}

// DefaultConfig returns a config growing a straight, upright skeleton of unit
// height.
func DefaultConfig() Config {
	return Config{
		Height:         1,
		HeightSegments: 8,
		Gravity:        r3.Vec{Y: -1},
		StartDirection: r3.Vec{Y: 1},
		Forces: Forces{
			Direction: models.Constant(1),
			Gravity:   models.Constant(0),
			Turn:      models.UniformVec(0),
			Random:    models.Constant(0),
			Twist:     models.Constant(0),
		},
		DirectionNoise: noise.Settings{Frequency: 1, Min: -1, Max: 1},
		TwistNoise:     noise.Settings{Frequency: 1, Min: -1, Max: 1},
	}
}

func (c Config) Validate() error {
	if !(c.Height > 0) {
		return errors.New("growth height must be positive").
			WithType(models.ErrTypeConfiguration).
			WithTag("height", c.Height)
	}
	if c.HeightSegments < 1 {
		return errors.New("growth height segments must be at least 1").
			WithType(models.ErrTypeConfiguration).
			WithTag("height_segments", c.HeightSegments)
	}
	if r3.Norm2(c.StartDirection) == 0 {
		return errors.New("growth start direction must not be zero").
			WithType(models.ErrTypeConfiguration)
	}
	return nil
}

// Generator grows skeletons from a fixed set of noise fields. Skeletons grown
// by one generator share the same fields; the per-step jitter comes from the
// rng handed to Generate.
type Generator struct {
	config Config

	direction *noise.Field
	twist     *noise.Field
}

// NewGenerator validates the config and draws the noise fields from rng.
func NewGenerator(rng *rand.Rand, c Config) (*Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &Generator{
		config:    c,
		direction: noise.New(rng, c.DirectionNoise),
		twist:     noise.New(rng, c.TwistNoise),
	}, nil
}

func (g *Generator) Config() Config {
	return g.config
}

// Generate grows a skeleton of Config.HeightSegments segments from start.
//
// When the forces cancel out at a step, the previous direction is kept and
// the step is counted as degenerate.
func (g *Generator) Generate(rng *rand.Rand, start r3.Vec) models.Skeleton {
	c := g.config
	step := c.Height / float64(c.HeightSegments)

	skeleton := make(models.Skeleton, 1, c.HeightSegments)
	skeleton[0] = models.Segment{
		Position:  start,
		Direction: r3.Unit(c.StartDirection),
	}

	for i := 1; i < c.HeightSegments; i++ {
		n := float64(i) / float64(c.HeightSegments-1)
		prev := skeleton[i-1]

		dir, err := g.nextDirection(rng, prev, n)
		if err != nil {
			logs.WithTag("segment", i).
				WithTag("progress", n).
				Debug(err)
			instrumentDegenerateDirection()
			dir = prev.Direction
		}

		pos := r3.Add(prev.Position, r3.Scale(step, dir))
		skeleton = append(skeleton, models.Segment{
			Position:  pos,
			Direction: dir,
			Rotation:  prev.Rotation + g.twist.At(pos)*c.Forces.Twist.At(n),
		})
	}

	instrumentSkeleton(len(skeleton))
	return skeleton
}

func (g *Generator) nextDirection(rng *rand.Rand, prev models.Segment, n float64) (r3.Vec, error) {
	f := g.config.Forces

	turn := r3.Vec{
		X: g.direction.AtOffset(prev.Position, channelOffsets[0]),
		Y: g.direction.AtOffset(prev.Position, channelOffsets[1]),
		Z: g.direction.AtOffset(prev.Position, channelOffsets[2]),
	}

	dir := r3.Scale(f.Direction.At(n), prev.Direction)
	w := f.Turn.At(n)
	dir = r3.Add(dir, r3.Vec{X: w.X * turn.X, Y: w.Y * turn.Y, Z: w.Z * turn.Z})
	dir = r3.Add(dir, r3.Scale(-f.Gravity.At(n), g.config.Gravity))

	random := sampling.RandomUnitVector(rng)
	dir = r3.Add(dir, r3.Scale(f.Random.At(n)*rng.Float64(), random))

	length := r3.Norm(dir)
	if !(length > 0) || math.IsInf(length, 0) {
		return r3.Vec{}, errors.New("growth forces cancel out").
			WithType(models.ErrTypeDegenerateDirection).
			WithTag("length", length)
	}
	return r3.Scale(1/length, dir), nil
}
