// Package warp bends flat grid meshes around skeletons into tapered, twisted
// ribbons.
package warp

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/noise"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axes tried in order when a segment direction is parallel to the configured
// right axis.
var fallbackAxes = [...]r3.Vec{
	{Z: 1},
	{Y: 1},
}

type Config struct {
	// Ribbon width at full thickness.
	Width float64

	// Displacement along the second cross-section axis at full bend.
	Bend float64

	// Maps the normalized distance from the middle column, 0 at the middle
	// and 1 at the edges, to a bend multiplier.
	BendController models.Profile

	// Maps the normalized distance from the tip, 1 at the root and 0 at the
	// tip, to a thickness multiplier.
	ThicknessController models.Profile

	// Optional noise multiplying the thickness of each row. A nil field
	// leaves the thickness untouched.
	WidthNoise *noise.Field

	// Axis crossed with segment directions to build cross-sections.
	GlobalRight r3.Vec

	// Leaves normals as they are.
	SkipNormals bool
}

func DefaultConfig() Config {
	return Config{
		Width:               0.1,
		Bend:                0,
		BendController:      models.LinearProfile,
		ThicknessController: models.ConstantProfile(1),
		GlobalRight:         r3.Vec{X: 1},
	}
}

func (c Config) Validate() error {
	if c.BendController == nil || c.ThicknessController == nil {
		return errors.New("warp bend and thickness controllers are required").
			WithType(models.ErrTypeConfiguration)
	}
	if r3.Norm2(c.GlobalRight) == 0 {
		return errors.New("warp global right axis must not be zero").
			WithType(models.ErrTypeConfiguration)
	}
	return nil
}

// Warp overwrites the grid positions so that row sy follows segment sy of the
// skeleton, then recomputes the normals unless Config.SkipNormals is set. A
// zero segment direction fails the warp and leaves the grid partially written.
func Warp(g *models.Grid, skeleton models.Skeleton, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if g.HeightSegments != len(skeleton) {
		return errors.New("grid rows do not match skeleton segments").
			WithType(models.ErrTypeMeshMismatch).
			WithTag("height_segments", g.HeightSegments).
			WithTag("skeleton_segments", len(skeleton))
	}
	if len(g.Positions) != g.VertexCount()*3 {
		return errors.New("grid position buffer has the wrong size").
			WithType(models.ErrTypeMeshMismatch).
			WithTag("positions", len(g.Positions)).
			WithTag("vertices", g.VertexCount())
	}

	width := g.WidthSegments
	center := float64(width-1) / 2

	for sy, s := range skeleton {
		n := 0.0
		if g.HeightSegments > 1 {
			n = float64(sy) / float64(g.HeightSegments-1)
		}

		thickness := c.ThicknessController(1 - n)
		if c.WidthNoise != nil {
			thickness *= c.WidthNoise.At(s.Position)
		}

		perp1, perp2, err := crossSection(s, c.GlobalRight, sy)
		if err != nil {
			return err
		}

		widthOffset := thickness * c.Width / 2
		widthStep := thickness * c.Width / float64(width)

		for sx := 0; sx < width; sx++ {
			ratio := 0.0
			if center > 0 {
				ratio = math.Abs(float64(sx)-center) / center
			}
			bendAmount := c.Bend * c.BendController(ratio)

			v := r3.Add(s.Position, r3.Scale(widthStep*float64(sx)-widthOffset, perp1))
			v = r3.Add(v, r3.Scale(bendAmount*widthOffset, perp2))
			g.SetVertex(sx, sy, v)
		}
	}

	if !c.SkipNormals {
		RecomputeNormals(g)
	}
	instrumentWarp(g.VertexCount())
	return nil
}

// crossSection returns the two unit axes spanning the plane orthogonal to the
// segment direction, rolled by the segment rotation.
func crossSection(s models.Segment, right r3.Vec, row int) (r3.Vec, r3.Vec, error) {
	if !(r3.Norm2(s.Direction) > 0) {
		return r3.Vec{}, r3.Vec{}, errors.New("segment direction is zero").
			WithType(models.ErrTypeDegenerateDirection).
			WithTag("row", row)
	}

	perp1, err := perpendicular(s.Direction, right)
	if err != nil {
		logs.WithTag("row", row).
			WithTag("direction", s.Direction).
			Debug(err)
		instrumentDegenerateDirection()

		for _, axis := range fallbackAxes {
			if perp1, err = perpendicular(s.Direction, axis); err == nil {
				break
			}
		}
	}

	perp1 = r3.Rotate(perp1, s.Rotation, s.Direction)
	perp2 := r3.Unit(r3.Cross(s.Direction, perp1))
	return perp1, perp2, nil
}

func perpendicular(direction, axis r3.Vec) (r3.Vec, error) {
	v := r3.Cross(direction, axis)
	if l := r3.Norm(v); l < 1e-12 {
		return r3.Vec{}, errors.New("segment direction is parallel to the cross-section axis").
			WithType(models.ErrTypeDegenerateDirection).
			WithTag("axis", axis)
	}
	return r3.Unit(v), nil
}
