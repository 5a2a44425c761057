package scatter

import (
	"math/rand"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/noise"
	"github.com/aukilabs/sprout/modules/sampling"
)

const maxProbabilityDepth = 8

var combiners = map[string]func(a, b float64) float64{
	"pow": sampling.CombinePow,
	"mul": sampling.CombineMul,
	"min": sampling.CombineMin,
	"max": sampling.CombineMax,
}

// probabilityMap builds the map described by s. Noise maps draw their fields
// from rng in depth-first order, so a given seed always yields the same map.
func probabilityMap(rng *rand.Rand, s messages.ProbabilitySpec, depth int) (sampling.ProbabilityMap, error) {
	if depth > maxProbabilityDepth {
		return nil, errors.New("probability map is nested too deeply").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("max_depth", maxProbabilityDepth)
	}

	switch s.Type {
	case "uniform":
		return sampling.UniformProbabilityMap(s.Value), nil

	case "noise":
		return sampling.NoiseProbabilityMap(rng, sampling.NoiseSettings{
			Settings: noise.Settings{
				Frequency: s.Frequency,
				Min:       s.Min,
				Max:       s.Max,
			},
			Pow: s.Pow,
		}), nil

	case "combined":
		combine, ok := combiners[s.Combiner]
		if !ok {
			return nil, errors.New("unknown probability combiner").
				WithType(models.ErrTypeMsgInvalid).
				WithTag("combiner", s.Combiner)
		}
		if s.A == nil || s.B == nil {
			return nil, errors.New("combined probability map needs two operands").
				WithType(models.ErrTypeMsgInvalid)
		}

		a, err := probabilityMap(rng, *s.A, depth+1)
		if err != nil {
			return nil, err
		}
		b, err := probabilityMap(rng, *s.B, depth+1)
		if err != nil {
			return nil, err
		}
		return sampling.CombineProbabilityMaps(a, b, combine), nil

	default:
		return nil, errors.New("unknown probability map type").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("probability_type", s.Type)
	}
}
