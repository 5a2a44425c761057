package blade

import (
	"math/rand"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/growth"
	"github.com/aukilabs/sprout/modules/noise"
	"github.com/aukilabs/sprout/modules/sampling"
	"gonum.org/v1/gonum/spatial/r3"
)

func noiseSettings(s messages.NoiseSpec) noise.Settings {
	return noise.Settings{
		Frequency: s.Frequency,
		Min:       s.Min,
		Max:       s.Max,
	}
}

// configFromRequest overrides the default config with the request. Zero
// sizes, untyped profiles and left out forces or noises keep their defaults.
func configFromRequest(req messages.BladeRequest) (Config, error) {
	c := DefaultConfig()
	if req.WidthSegments != 0 {
		c.WidthSegments = req.WidthSegments
	}
	if req.Height != 0 {
		c.Growth.Height = req.Height
	}
	if req.HeightSegments != 0 {
		c.Growth.HeightSegments = req.HeightSegments
	}
	if req.Gravity != nil {
		c.Growth.Gravity = req.Gravity.R3()
	}
	if req.StartDirection != nil {
		c.Growth.StartDirection = req.StartDirection.R3()
	}
	setForces(&c.Growth.Forces, req.Forces)
	if req.DirectionNoise != nil {
		c.Growth.DirectionNoise = noiseSettings(*req.DirectionNoise)
	}
	if req.TwistNoise != nil {
		c.Growth.TwistNoise = noiseSettings(*req.TwistNoise)
	}

	if req.Width != 0 {
		c.Warp.Width = req.Width
	}
	c.Warp.Bend = req.Bend
	if req.GlobalRight != nil {
		c.Warp.GlobalRight = req.GlobalRight.R3()
	}

	var err error
	if req.BendController.Type != "" {
		if c.Warp.BendController, err = req.BendController.Profile(); err != nil {
			return Config{}, err
		}
	}
	if req.ThicknessController.Type != "" {
		if c.Warp.ThicknessController, err = req.ThicknessController.Profile(); err != nil {
			return Config{}, err
		}
	}

	if req.WidthNoise != nil {
		s := noiseSettings(*req.WidthNoise)
		c.WidthNoise = &s
	}

	if err := c.Validate(); err != nil {
		return Config{}, errors.New("invalid blade configuration").
			WithType(models.ErrTypeMsgInvalid).
			Wrap(err)
	}
	return c, nil
}

func setForces(f *growth.Forces, s messages.ForcesSpec) {
	if s.Direction != nil {
		f.Direction = s.Direction.Param()
	}
	if s.Gravity != nil {
		f.Gravity = s.Gravity.Param()
	}
	if s.Turn != nil {
		f.Turn = s.Turn.VecParam()
	}
	if s.Random != nil {
		f.Random = s.Random.Param()
	}
	if s.Twist != nil {
		f.Twist = s.Twist.Param()
	}
}

// startsFromRequest returns the explicit start points, or Count points drawn
// uniformly in the request domain.
func startsFromRequest(req messages.BladeRequest, maxBatchSize int) ([]r3.Vec, error) {
	if len(req.Starts) != 0 {
		if len(req.Starts) > maxBatchSize {
			return nil, errors.New("too many blades requested").
				WithType(models.ErrTypeMsgInvalid).
				WithTag("count", len(req.Starts)).
				WithTag("max_batch_size", maxBatchSize)
		}

		starts := make([]r3.Vec, len(req.Starts))
		for i, s := range req.Starts {
			starts[i] = s.R3()
		}
		return starts, nil
	}

	if req.Domain == nil {
		return nil, errors.New("blade request needs start points or a domain").
			WithType(models.ErrTypeMsgInvalid)
	}
	if req.Count < 1 || req.Count > maxBatchSize {
		return nil, errors.New("invalid blade count").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("count", req.Count).
			WithTag("max_batch_size", maxBatchSize)
	}

	domain, err := req.Domain.Domain()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	starts := make([]r3.Vec, req.Count)
	for i := range starts {
		starts[i] = sampling.RandomPointInDomain(rng, domain)
	}
	return starts, nil
}

func instanceToMessage(inst Instance) messages.BladeInstance {
	msg := messages.BladeInstance{
		ID:      inst.ID,
		Index:   inst.Index,
		Skipped: inst.Skipped,
	}
	if inst.Err != nil {
		msg.Error = inst.Err.Error()
		return msg
	}

	msg.Skeleton = messages.NewSegmentSpecs(inst.Skeleton)
	msg.Positions = inst.Grid.Positions
	msg.Normals = inst.Grid.Normals
	msg.Indices = inst.Grid.Indices
	return msg
}
