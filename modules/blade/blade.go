// Package blade grows skeletons and wraps grid meshes around them. It also
// provides the blade module serving batch generation to clients.
package blade

import (
	"math/rand"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/growth"
	"github.com/aukilabs/sprout/modules/noise"
	"github.com/aukilabs/sprout/modules/warp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config describes a blade shape. Growth.HeightSegments is also the number
// of grid rows.
type Config struct {
	Growth growth.Config
	Warp   warp.Config

	WidthSegments int

	// Settings of the noise scaling the thickness of each row. Nil disables
	// width noise. Warp.WidthNoise is ignored.
	WidthNoise *noise.Settings
}

func DefaultConfig() Config {
	return Config{
		Growth:        growth.DefaultConfig(),
		Warp:          warp.DefaultConfig(),
		WidthSegments: 3,
	}
}

func (c Config) Validate() error {
	if c.WidthSegments < 1 {
		return errors.New("blade width segments must be at least 1").
			WithType(models.ErrTypeConfiguration).
			WithTag("width_segments", c.WidthSegments)
	}
	if err := c.Growth.Validate(); err != nil {
		return err
	}
	return c.Warp.Validate()
}

// NewGrid returns a pristine grid sized for the config.
func (c Config) NewGrid() (*models.Grid, error) {
	return models.NewGrid(c.WidthSegments, c.Growth.HeightSegments)
}

// Generate grows a skeleton from start and warps the caller provided grid
// around it. The grid must have Growth.HeightSegments rows. Noise fields and
// growth jitter are all drawn from rng.
func Generate(rng *rand.Rand, start r3.Vec, g *models.Grid, c Config) (models.Skeleton, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	gen, err := growth.NewGenerator(rng, c.Growth)
	if err != nil {
		return nil, err
	}
	skeleton := gen.Generate(rng, start)

	wc := c.Warp
	wc.WidthNoise = nil
	if c.WidthNoise != nil {
		wc.WidthNoise = noise.New(rng, *c.WidthNoise)
	}

	if err := warp.Warp(g, skeleton, wc); err != nil {
		return nil, errors.New("warping blade failed").Wrap(err)
	}
	return skeleton, nil
}
