// Package smoketest runs the whole generation pipeline in process to check
// that a server instance produces sound output.
package smoketest

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	sprouthttp "github.com/aukilabs/sprout/http"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules/blade"
	"github.com/aukilabs/sprout/modules/noise"
	"github.com/aukilabs/sprout/modules/octree"
	"github.com/aukilabs/sprout/modules/sampling"
	"github.com/segmentio/encoding/json"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultCount = 32
	MaxCount     = 1024

	domainRadius = 10
	sampleTries  = 16
)

type Request struct {
	Seed  int64 `json:"seed"`
	Count int   `json:"count"`
}

type Check struct {
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

type Report struct {
	OK       bool          `json:"ok"`
	Seed     int64         `json:"seed"`
	Points   int           `json:"points"`
	Checks   []Check       `json:"checks"`
	Duration time.Duration `json:"duration"`
}

type Options struct {
	// The number of goroutines generating blades. Zero uses GOMAXPROCS.
	Workers int

	// Optional. Called with every report.
	SendResult func(context.Context, Report) error
}

// HandleSmokeTest runs the pipeline for each POST request and responds with
// the report. Failed runs respond with 503.
func HandleSmokeTest(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		b, err := io.ReadAll(r.Body)
		if err != nil {
			sprouthttp.WriteError(w, http.StatusInternalServerError, errors.New("reading body failed").Wrap(err))
			return
		}

		req := Request{Seed: time.Now().UnixNano()}
		if len(b) != 0 {
			if err := json.Unmarshal(b, &req); err != nil {
				sprouthttp.WriteError(w, http.StatusBadRequest, errors.New("decoding smoke test request failed").
					WithType(models.ErrTypeMsgInvalid).
					Wrap(err))
				return
			}
		}
		if req.Count == 0 {
			req.Count = DefaultCount
		}
		if req.Count < 0 || req.Count > MaxCount {
			sprouthttp.WriteError(w, http.StatusBadRequest, errors.New("invalid smoke test count").
				WithType(models.ErrTypeMsgInvalid).
				WithTag("count", req.Count).
				WithTag("max_count", MaxCount))
			return
		}

		report := Run(r.Context(), req, opts.Workers)

		entry := logs.WithTag("seed", report.Seed).
			WithTag("points", report.Points).
			WithTag("duration", report.Duration)
		if report.OK {
			entry.Info("smoke test passed")
		} else {
			entry.WithTag("checks", report.Checks).Warn("smoke test failed")
		}

		if opts.SendResult != nil {
			if err := opts.SendResult(r.Context(), report); err != nil {
				logs.WithTag("seed", report.Seed).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}

		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		sprouthttp.WriteJSON(w, status, report)
	}
}

// Run samples points in a sphere, indexes them, then grows and warps a blade
// on each. It stops at the first failed check.
func Run(ctx context.Context, req Request, workers int) Report {
	begin := time.Now()

	p := pipeline{
		ctx:     ctx,
		seed:    req.Seed,
		count:   req.Count,
		workers: workers,
	}

	report := Report{
		OK:   true,
		Seed: req.Seed,
	}

	checks := []struct {
		name string
		run  func() error
	}{
		{name: "sample", run: p.sample},
		{name: "index", run: p.index},
		{name: "blade", run: p.blades},
		{name: "determinism", run: p.determinism},
	}

	for _, c := range checks {
		start := time.Now()
		err := c.run()

		check := Check{
			Name:     c.name,
			OK:       err == nil,
			Duration: time.Since(start),
		}
		if err != nil {
			check.Error = err.Error()
			report.OK = false
		}
		report.Checks = append(report.Checks, check)

		if err != nil {
			break
		}
	}

	report.Points = len(p.points)
	report.Duration = time.Since(begin)
	return report
}

type pipeline struct {
	ctx     context.Context
	seed    int64
	count   int
	workers int

	domain    models.Domain
	points    []r3.Vec
	config    blade.Config
	instances []blade.Instance
}

func (p *pipeline) sample() error {
	domain, err := models.NewSphereDomain(r3.Vec{}, domainRadius)
	if err != nil {
		return err
	}
	p.domain = domain

	rng := rand.New(rand.NewSource(p.seed))
	probability := sampling.CombineProbabilityMaps(
		sampling.NoiseProbabilityMap(rng, sampling.NoiseSettings{
			Settings: noise.Settings{Frequency: 0.2, Min: 0, Max: 1},
		}),
		sampling.UniformProbabilityMap(0.25),
		sampling.CombineMax,
	)

	p.points = sampling.WeightedRandomPointsInDomain(rng, domain, probability, p.count, sampleTries)
	if len(p.points) == 0 {
		return errors.New("no point accepted").WithTag("count", p.count)
	}
	for i, pt := range p.points {
		if !domain.Contains(pt) {
			return errors.New("point sampled outside of the domain").
				WithTag("index", i).
				WithTag("point", pt)
		}
	}
	return nil
}

func (p *pipeline) index() error {
	bounds, err := p.domain.Bounds()
	if err != nil {
		return err
	}

	tree, err := octree.New[int](bounds, octree.Options{Capacity: 4, MaxDepth: 6})
	if err != nil {
		return err
	}

	indices := make([]int, len(p.points))
	for i := range indices {
		indices[i] = i
	}
	if n := tree.InsertAll(p.points, indices); n != len(p.points) {
		return errors.New("points missing from the index").
			WithTag("inserted", n).
			WithTag("points", len(p.points))
	}

	sphere := models.Sphere{Radius: domainRadius / 2}
	expected := 0
	for _, pt := range p.points {
		if sphere.Contains(pt) {
			expected++
		}
	}
	if found := len(tree.SphereQueryPayloads(sphere)); found != expected {
		return errors.New("sphere query does not match a linear scan").
			WithTag("found", found).
			WithTag("expected", expected)
	}
	return nil
}

func (p *pipeline) blades() error {
	c := blade.DefaultConfig()
	c.Growth.Forces.Turn = models.ConstantVec(r3.Vec{X: 0.3, Y: 0.1, Z: 0.3})
	c.Growth.Forces.Random = models.Constant(0.1)
	c.Growth.Forces.Gravity = models.Taper(0, 0.2)
	c.Growth.Forces.Twist = models.Constant(0.5)
	c.Warp.Bend = 0.02
	c.Warp.ThicknessController = models.LinearProfile
	c.WidthNoise = &noise.Settings{Frequency: 1, Min: 0.8, Max: 1.2}
	p.config = c

	p.instances = blade.GenerateBatch(p.ctx, p.seed, p.points, c, p.workers)
	for _, inst := range p.instances {
		if inst.Err != nil {
			return errors.New("blade generation failed").
				WithTag("index", inst.Index).
				Wrap(inst.Err)
		}
		if len(inst.Skeleton) != c.Growth.HeightSegments {
			return errors.New("unexpected skeleton length").
				WithTag("index", inst.Index).
				WithTag("segments", len(inst.Skeleton))
		}
		if err := requireFinite(inst.Grid.Positions); err != nil {
			return errors.New("invalid blade positions").WithTag("index", inst.Index).Wrap(err)
		}
		if err := requireFinite(inst.Grid.Normals); err != nil {
			return errors.New("invalid blade normals").WithTag("index", inst.Index).Wrap(err)
		}
	}
	return nil
}

func (p *pipeline) determinism() error {
	inst := p.instances[0]

	g, err := p.config.NewGrid()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(blade.InstanceSeed(p.seed, inst.Index)))
	if _, err := blade.Generate(rng, inst.Start, g, p.config); err != nil {
		return err
	}

	for i, v := range g.Positions {
		if v != inst.Grid.Positions[i] {
			return errors.New("regenerated blade differs").
				WithTag("index", inst.Index).
				WithTag("component", i)
		}
	}
	return nil
}

func requireFinite(values []float32) error {
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.New("value is not finite").
				WithTag("component", i).
				WithTag("value", f)
		}
	}
	return nil
}
