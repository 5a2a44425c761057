package sampling

import (
	"math"
	"math/rand"

	"github.com/aukilabs/sprout/modules/noise"
	"gonum.org/v1/gonum/spatial/r3"
)

// ProbabilityMap returns the acceptance likelihood of a position. Values are
// expected in [0, 1]; anything above 1 always accepts and anything at or below
// 0 never does.
type ProbabilityMap func(p r3.Vec) float64

// NoiseSettings configures a noise driven probability map.
type NoiseSettings struct {
	noise.Settings

	// Exponent applied to the remapped noise value. Nil leaves the value
	// as is.
	Pow *float64
}

func UniformProbabilityMap(value float64) ProbabilityMap {
	return func(r3.Vec) float64 {
		return value
	}
}

// NoiseProbabilityMap returns a map sampling a coherent noise field built
// from rng. Each map gets its own offset, so maps built in sequence from the
// same rng are decorrelated.
func NoiseProbabilityMap(rng *rand.Rand, s NoiseSettings) ProbabilityMap {
	f := noise.New(rng, s.Settings)
	if s.Pow == nil {
		return f.At
	}

	pow := *s.Pow
	return func(p r3.Vec) float64 {
		return math.Pow(f.At(p), pow)
	}
}

// CombineProbabilityMaps combines two maps pointwise.
func CombineProbabilityMaps(a, b ProbabilityMap, combine func(a, b float64) float64) ProbabilityMap {
	return func(p r3.Vec) float64 {
		return combine(a(p), b(p))
	}
}

// Common combiners for CombineProbabilityMaps.
var (
	CombinePow = math.Pow
	CombineMin = math.Min
	CombineMax = math.Max
)

func CombineMul(a, b float64) float64 {
	return a * b
}
