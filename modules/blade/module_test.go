package blade

import (
	"context"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/featureflag"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newTestModule(flags ...string) *Module {
	m := &Module{
		FeatureFlags: featureflag.New(flags),
		Workers:      2,
	}
	m.Init("test-client")
	return m
}

func sendBlade(t *testing.T, ctx context.Context, m *Module, req messages.BladeRequest) messages.Msg {
	msg, err := messages.NewMsg(messages.MsgTypeBladeRequest, 7, req)
	require.NoError(t, err)

	var rec messages.ResponseRecorder
	require.NoError(t, m.HandleMsg(ctx, &rec, msg))

	res, ok := rec.Last()
	require.True(t, ok)
	require.Equal(t, uint32(7), res.RequestID)
	return res
}

func decodeBlades(t *testing.T, msg messages.Msg) messages.BladeResponse {
	require.Equal(t, messages.MsgTypeBladeResponse, msg.Type)

	var res messages.BladeResponse
	require.NoError(t, msg.DataTo(&res))
	return res
}

func testRequest() messages.BladeRequest {
	from, to := 0.0, 0.2
	return messages.BladeRequest{
		Seed:           42,
		Starts:         []messages.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		Height:         2,
		HeightSegments: 5,
		WidthSegments:  3,
		Forces: messages.ForcesSpec{
			Direction: &messages.ParamSpec{Constant: 1},
			Gravity:   &messages.ParamSpec{From: &from, To: &to},
			Turn:      &messages.VecParamSpec{Constant: messages.Weights{0.3, 0.1, 0.3}},
			Twist:     &messages.ParamSpec{Constant: 0.2},
		},
		DirectionNoise:      &messages.NoiseSpec{Frequency: 1, Min: -1, Max: 1},
		TwistNoise:          &messages.NoiseSpec{Frequency: 1, Min: -1, Max: 1},
		Width:               0.2,
		Bend:                0.05,
		BendController:      messages.ProfileSpec{Type: "power", Exponent: 2},
		ThicknessController: messages.ProfileSpec{Type: "linear"},
		WidthNoise:          &messages.NoiseSpec{Frequency: 2, Min: 0.9, Max: 1.1},
	}
}

func TestModuleSkipsOtherMessages(t *testing.T) {
	m := newTestModule()

	var rec messages.ResponseRecorder
	err := m.HandleMsg(context.Background(), &rec, messages.Msg{Type: messages.MsgTypeScatterRequest})
	require.True(t, errors.IsType(err, models.ErrTypeMsgSkip))
	require.Empty(t, rec.Msgs())
}

func TestModuleBlades(t *testing.T) {
	req := testRequest()
	res := decodeBlades(t, sendBlade(t, context.Background(), newTestModule(), req))

	require.NotEmpty(t, res.BatchID)
	require.Len(t, res.Instances, len(req.Starts))

	for i, inst := range res.Instances {
		require.Equal(t, i, inst.Index)
		require.Empty(t, inst.Error)
		require.False(t, inst.Skipped)
		require.Len(t, inst.Skeleton, 5)
		require.Equal(t, req.Starts[i], inst.Skeleton[0].Position)
		require.Len(t, inst.Positions, 3*5*3)
		require.Len(t, inst.Normals, 3*5*3)
		require.Len(t, inst.Indices, 2*4*6)
	}

	t.Run("reproducible", func(t *testing.T) {
		other := decodeBlades(t, sendBlade(t, context.Background(), newTestModule(), req))
		require.NotEqual(t, res.BatchID, other.BatchID)
		for i := range res.Instances {
			require.Equal(t, res.Instances[i].Skeleton, other.Instances[i].Skeleton)
			require.Equal(t, res.Instances[i].Positions, other.Instances[i].Positions)
		}
	})
}

func TestModuleBladesInDomain(t *testing.T) {
	req := testRequest()
	req.Starts = nil
	req.Count = 6
	req.Domain = &messages.DomainSpec{
		Type: "box",
		Min:  messages.Vec3{-5, 0, -5},
		Max:  messages.Vec3{5, 0.5, 5},
	}

	res := decodeBlades(t, sendBlade(t, context.Background(), newTestModule(), req))
	require.Len(t, res.Instances, 6)

	for _, inst := range res.Instances {
		require.Empty(t, inst.Error)
		root := inst.Skeleton[0].Position
		require.True(t, root[0] >= -5 && root[0] <= 5)
		require.True(t, root[1] >= 0 && root[1] <= 0.5)
		require.True(t, root[2] >= -5 && root[2] <= 5)
	}
}

// gatheredCounter returns the value of a counter registered in the default
// registry, or 0 when it has not been created yet.
func gatheredCounter(t *testing.T, name string) float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}

func TestModuleDefaults(t *testing.T) {
	degenerate := gatheredCounter(t, "growth_degenerate_direction_count_total")

	res := decodeBlades(t, sendBlade(t, context.Background(), newTestModule(), messages.BladeRequest{
		Starts: []messages.Vec3{{0, 0, 0}},
	}))

	require.Len(t, res.Instances, 1)
	inst := res.Instances[0]
	require.Empty(t, inst.Error)
	require.Len(t, inst.Skeleton, DefaultConfig().Growth.HeightSegments)
	for _, s := range inst.Skeleton {
		require.Equal(t, messages.Vec3{0, 1, 0}, s.Direction)
	}
	require.Equal(t, degenerate, gatheredCounter(t, "growth_degenerate_direction_count_total"))
}

func TestConfigFromRequestKeepsDefaultForces(t *testing.T) {
	def := DefaultConfig()

	c, err := configFromRequest(messages.BladeRequest{})
	require.NoError(t, err)
	require.Equal(t, def.Growth.DirectionNoise, c.Growth.DirectionNoise)
	require.Equal(t, def.Growth.TwistNoise, c.Growth.TwistNoise)
	for _, n := range []float64{0, 0.5, 1} {
		require.Equal(t, def.Growth.Forces.Direction.At(n), c.Growth.Forces.Direction.At(n))
		require.Equal(t, def.Growth.Forces.Gravity.At(n), c.Growth.Forces.Gravity.At(n))
		require.Equal(t, def.Growth.Forces.Turn.At(n), c.Growth.Forces.Turn.At(n))
	}

	random := 0.4
	c, err = configFromRequest(messages.BladeRequest{
		Forces: messages.ForcesSpec{
			Random: &messages.ParamSpec{Constant: random},
			Turn:   &messages.VecParamSpec{Constant: messages.Weights{0.5, 0, 0.5}},
		},
		TwistNoise: &messages.NoiseSpec{Frequency: 3, Min: -2, Max: 2},
	})
	require.NoError(t, err)
	require.Equal(t, def.Growth.Forces.Direction.At(0.5), c.Growth.Forces.Direction.At(0.5))
	require.Equal(t, random, c.Growth.Forces.Random.At(0.5))
	require.Equal(t, r3.Vec{X: 0.5, Z: 0.5}, c.Growth.Forces.Turn.At(0.5))
	require.Equal(t, def.Growth.DirectionNoise, c.Growth.DirectionNoise)
	require.Equal(t, 3.0, c.Growth.TwistNoise.Frequency)
}

func TestModuleDisableNormalRecompute(t *testing.T) {
	m := newTestModule(string(featureflag.FlagDisableNormalRecompute))
	res := decodeBlades(t, sendBlade(t, context.Background(), m, testRequest()))

	for _, inst := range res.Instances {
		for i := 0; i < len(inst.Normals); i += 3 {
			require.Equal(t, []float32{0, 0, 1}, inst.Normals[i:i+3])
		}
	}
}

func TestModuleCancelledBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := decodeBlades(t, sendBlade(t, ctx, newTestModule(), testRequest()))
	for _, inst := range res.Instances {
		require.True(t, inst.Skipped)
		require.NotEmpty(t, inst.Error)
		require.Empty(t, inst.Positions)
	}
}

func TestModuleInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*messages.BladeRequest)
	}{
		{
			name:   "no starts nor domain",
			mutate: func(r *messages.BladeRequest) { r.Starts = nil },
		},
		{
			name: "too many starts",
			mutate: func(r *messages.BladeRequest) {
				r.Starts = make([]messages.Vec3, DefaultMaxBatchSize+1)
			},
		},
		{
			name: "zero count",
			mutate: func(r *messages.BladeRequest) {
				r.Starts = nil
				r.Domain = &messages.DomainSpec{Type: "sphere", Radius: 1}
			},
		},
		{
			name: "invalid domain",
			mutate: func(r *messages.BladeRequest) {
				r.Starts = nil
				r.Count = 2
				r.Domain = &messages.DomainSpec{Type: "sphere", Radius: -1}
			},
		},
		{
			name:   "negative height",
			mutate: func(r *messages.BladeRequest) { r.Height = -1 },
		},
		{
			name:   "unknown profile",
			mutate: func(r *messages.BladeRequest) { r.BendController.Type = "spline" },
		},
		{
			name:   "zero right axis",
			mutate: func(r *messages.BladeRequest) { r.GlobalRight = &messages.Vec3{} },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := testRequest()
			test.mutate(&req)

			msg := sendBlade(t, context.Background(), newTestModule(), req)
			require.Equal(t, messages.MsgTypeErrorResponse, msg.Type)

			var res messages.ErrorResponse
			require.NoError(t, msg.DataTo(&res))
			require.Equal(t, models.ErrTypeMsgInvalid, res.Code)
		})
	}
}
