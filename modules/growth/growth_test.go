package growth

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/noise"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func windyConfig() Config {
	c := DefaultConfig()
	c.Height = 3
	c.HeightSegments = 24
	c.Forces = Forces{
		Direction: models.Taper(1, 0.4),
		Gravity:   models.Func(func(n float64) float64 { return 0.3 * n * n }),
		Turn:      models.UniformVec(0.8),
		Random:    models.Constant(0.2),
		Twist:     models.Taper(0, 2),
	}
	c.DirectionNoise = noise.Settings{Frequency: 1.7, Min: -1, Max: 1}
	c.TwistNoise = noise.Settings{Frequency: 0.9, Min: -0.5, Max: 0.5}
	return c
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    bool
	}{
		{
			name:   "default",
			mutate: func(*Config) {},
		},
		{
			name:   "single segment",
			mutate: func(c *Config) { c.HeightSegments = 1 },
		},
		{
			name:   "no segments",
			mutate: func(c *Config) { c.HeightSegments = 0 },
			err:    true,
		},
		{
			name:   "zero height",
			mutate: func(c *Config) { c.Height = 0 },
			err:    true,
		},
		{
			name:   "zero start direction",
			mutate: func(c *Config) { c.StartDirection = r3.Vec{} },
			err:    true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.mutate(&c)

			g, err := NewGenerator(rand.New(rand.NewSource(1)), c)
			if test.err {
				require.Error(t, err)
				require.True(t, errors.IsType(err, models.ErrTypeConfiguration))
				require.Nil(t, g)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, g)
		})
	}
}

func TestGenerate(t *testing.T) {
	c := windyConfig()
	g, err := NewGenerator(rand.New(rand.NewSource(2)), c)
	require.NoError(t, err)

	start := r3.Vec{X: 1, Y: 0, Z: -2}
	skeleton := g.Generate(rand.New(rand.NewSource(3)), start)
	require.Len(t, skeleton, c.HeightSegments)
	require.Equal(t, start, skeleton[0].Position)
	require.Equal(t, r3.Vec{Y: 1}, skeleton[0].Direction)
	require.Zero(t, skeleton[0].Rotation)

	step := c.Height / float64(c.HeightSegments)
	for i, s := range skeleton {
		require.InDelta(t, 1, r3.Norm(s.Direction), 1e-5)
		require.False(t, math.IsNaN(s.Rotation))

		if i == 0 {
			continue
		}
		delta := r3.Sub(s.Position, skeleton[i-1].Position)
		require.InDelta(t, step, r3.Norm(delta), 1e-9)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	grow := func() models.Skeleton {
		g, err := NewGenerator(rand.New(rand.NewSource(4)), windyConfig())
		require.NoError(t, err)
		return g.Generate(rand.New(rand.NewSource(5)), r3.Vec{})
	}
	require.Equal(t, grow(), grow())
}

func TestGenerateStraight(t *testing.T) {
	c := DefaultConfig()
	c.HeightSegments = 5
	c.Height = 2

	g, err := NewGenerator(rand.New(rand.NewSource(6)), c)
	require.NoError(t, err)

	skeleton := g.Generate(rand.New(rand.NewSource(7)), r3.Vec{})
	require.Len(t, skeleton, 5)
	for i, s := range skeleton {
		require.InDelta(t, 0.4*float64(i), s.Position.Y, 1e-12)
		require.InDelta(t, 0, s.Position.X, 1e-12)
		require.Equal(t, r3.Vec{Y: 1}, s.Direction)
	}
	require.InDelta(t, 1.6, skeleton.Tip().Position.Y, 1e-12)
}

func TestGenerateSingleSegment(t *testing.T) {
	c := windyConfig()
	c.HeightSegments = 1

	g, err := NewGenerator(rand.New(rand.NewSource(8)), c)
	require.NoError(t, err)

	start := r3.Vec{X: 4, Y: 5, Z: 6}
	skeleton := g.Generate(rand.New(rand.NewSource(9)), start)
	require.Equal(t, models.Skeleton{{Position: start, Direction: r3.Vec{Y: 1}}}, skeleton)
}

func TestGenerateDegenerateDirectionKeepsPreviousDirection(t *testing.T) {
	c := DefaultConfig()
	c.HeightSegments = 6
	c.StartDirection = r3.Vec{X: 3}
	c.Forces = Forces{
		Direction: models.Constant(0),
		Gravity:   models.Constant(0),
		Turn:      models.UniformVec(0),
		Random:    models.Constant(0),
		Twist:     models.Constant(0),
	}

	g, err := NewGenerator(rand.New(rand.NewSource(10)), c)
	require.NoError(t, err)

	skeleton := g.Generate(rand.New(rand.NewSource(11)), r3.Vec{})
	require.Len(t, skeleton, 6)
	for _, s := range skeleton {
		require.Equal(t, r3.Vec{X: 1}, s.Direction)
		require.False(t, math.IsNaN(s.Position.X))
	}
}

func TestNextDirectionReportsDegenerateDirection(t *testing.T) {
	c := DefaultConfig()
	c.Forces.Direction = models.Constant(1)
	c.Forces.Gravity = models.Constant(1)
	c.Gravity = r3.Vec{Y: 1}

	g, err := NewGenerator(rand.New(rand.NewSource(12)), c)
	require.NoError(t, err)

	// The previous direction is cancelled by the pull against gravity.
	_, err = g.nextDirection(rand.New(rand.NewSource(13)), models.Segment{Direction: r3.Vec{Y: 1}}, 0.5)
	require.Error(t, err)
	require.True(t, errors.IsType(err, models.ErrTypeDegenerateDirection))
}

func TestGenerateTurnIsPerAxis(t *testing.T) {
	c := DefaultConfig()
	c.HeightSegments = 16
	c.Gravity = r3.Vec{Z: -1}
	c.Forces = Forces{
		Direction: models.Constant(0),
		Gravity:   models.Constant(1),
		Turn:      models.ConstantVec(r3.Vec{X: 1}),
		Random:    models.Constant(0),
		Twist:     models.Constant(0),
	}

	g, err := NewGenerator(rand.New(rand.NewSource(14)), c)
	require.NoError(t, err)

	skeleton := g.Generate(rand.New(rand.NewSource(15)), r3.Vec{X: 0.3, Z: 0.7})
	turned := false
	for _, s := range skeleton[1:] {
		// Y only receives the unweighted noise axis, Z only the pull
		// against gravity.
		require.Zero(t, s.Direction.Y)
		require.Greater(t, s.Direction.Z, 0.0)
		if s.Direction.X != 0 {
			turned = true
		}
	}
	require.True(t, turned)
}

func TestNextDirectionWeightsNoiseAxes(t *testing.T) {
	c := DefaultConfig()
	c.Forces.Direction = models.Constant(0)
	c.Forces.Turn = models.TaperVec(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 0, Y: 1, Z: 0})

	g, err := NewGenerator(rand.New(rand.NewSource(16)), c)
	require.NoError(t, err)

	prev := models.Segment{Position: r3.Vec{X: 0.25, Y: 1.5, Z: -0.75}, Direction: r3.Vec{Y: 1}}
	dir, err := g.nextDirection(rand.New(rand.NewSource(17)), prev, 1)
	require.NoError(t, err)
	require.Zero(t, dir.X)
	require.Zero(t, dir.Z)
	require.InDelta(t, 1, math.Abs(dir.Y), 1e-12)
}
