// Package sampling draws random points inside domains, optionally weighted by
// probability maps through bounded rejection sampling.
//
// Every function takes the random source explicitly. A *rand.Rand is not safe
// for concurrent use, so concurrent callers need one source each.
package sampling

import (
	"math"
	"math/rand"

	"github.com/aukilabs/sprout/models"
	"gonum.org/v1/gonum/spatial/r3"
)

// RandomPointInDomain returns a point uniformly distributed in the domain
// volume.
func RandomPointInDomain(rng *rand.Rand, d models.Domain) r3.Vec {
	switch d.Kind {
	case models.DomainSphere:
		return randomPointInSphere(rng, d.Sphere)
	default:
		return randomPointInBox(rng, d.Box)
	}
}

func randomPointInBox(rng *rand.Rand, b models.Box) r3.Vec {
	return r3.Vec{
		X: b.Min.X + rng.Float64()*(b.Max.X-b.Min.X),
		Y: b.Min.Y + rng.Float64()*(b.Max.Y-b.Min.Y),
		Z: b.Min.Z + rng.Float64()*(b.Max.Z-b.Min.Z),
	}
}

func randomPointInSphere(rng *rand.Rand, s models.Sphere) r3.Vec {
	dir := RandomUnitVector(rng)
	r := s.Radius * math.Cbrt(rng.Float64())
	return r3.Add(s.Center, r3.Scale(r, dir))
}

// RandomUnitVector returns a direction uniformly distributed on the unit
// sphere.
func RandomUnitVector(rng *rand.Rand) r3.Vec {
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)

	sinPhi := math.Sin(phi)
	return r3.Vec{
		X: sinPhi * math.Cos(theta),
		Y: sinPhi * math.Sin(theta),
		Z: math.Cos(phi),
	}
}

// WeightedRandomPointInDomain draws up to tries uniform points and accepts
// the first one for which a uniform draw falls below m. ok is false when every
// draw was rejected, which is an expected outcome in sparse maps.
func WeightedRandomPointInDomain(rng *rand.Rand, d models.Domain, m ProbabilityMap, tries int) (p r3.Vec, ok bool) {
	p, ok, rejected := weightedRandomPoint(rng, d, m, tries)

	instrumentDraws(d.Kind, boolToInt(ok), rejected)
	return p, ok
}

// WeightedRandomPointsInDomain calls WeightedRandomPointInDomain count times
// and keeps the accepted points. The result can hold fewer than count points.
func WeightedRandomPointsInDomain(rng *rand.Rand, d models.Domain, m ProbabilityMap, count, tries int) []r3.Vec {
	points := make([]r3.Vec, 0, max(count, 0))
	var rejected int

	for i := 0; i < count; i++ {
		p, ok, r := weightedRandomPoint(rng, d, m, tries)
		rejected += r
		if ok {
			points = append(points, p)
		}
	}

	instrumentDraws(d.Kind, len(points), rejected)
	return points
}

func weightedRandomPoint(rng *rand.Rand, d models.Domain, m ProbabilityMap, tries int) (r3.Vec, bool, int) {
	for i := 0; i < tries; i++ {
		p := RandomPointInDomain(rng, d)
		if rng.Float64() < m(p) {
			return p, true, i
		}
	}
	return r3.Vec{}, false, max(tries, 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
