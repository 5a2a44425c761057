// Package scatter implements the scatter module: it samples points in a
// domain under a probability map, indexes them, and answers neighborhood
// queries against the last generation.
package scatter

import (
	"context"
	"math/rand"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/sprout/featureflag"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules"
	"github.com/aukilabs/sprout/modules/octree"
	"github.com/aukilabs/sprout/modules/sampling"
)

const (
	DefaultMaxPoints = 100000
	DefaultMaxTries  = 1000

	resultOK      = "ok"
	resultInvalid = "invalid"
)

type Module struct {
	FeatureFlags featureflag.FeatureFlag

	// The maximum number of points a request can ask for.
	MaxPoints int

	// The maximum number of rejection sampling tries per point.
	MaxTries int

	clientID string
	state    *State
}

func (m *Module) Name() string {
	return "scatter"
}

func (m *Module) Init(clientID string) {
	m.clientID = clientID
	m.state = &State{}

	if m.MaxPoints == 0 {
		m.MaxPoints = DefaultMaxPoints
	}
	if m.MaxTries == 0 {
		m.MaxTries = DefaultMaxTries
	}
}

func (m *Module) HandleMsg(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	switch msg.Type {
	case messages.MsgTypeScatterRequest:
		return m.handleScatter(ctx, respond, msg)

	case messages.MsgTypeScatterQueryRequest:
		return m.handleQuery(ctx, respond, msg)

	default:
		return modules.ErrModuleMsgSkip
	}
}

func (m *Module) HandleDisconnect() {
	if m.state != nil {
		m.state.Clear()
	}
}

func (m *Module) handleScatter(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.ScatterRequest
	if err := msg.DataTo(&req); err != nil {
		m.reject(respond, msg, err)
		instrumentScatter(resultInvalid, 0)
		return nil
	}

	res, err := m.scatter(req)
	if err != nil {
		m.reject(respond, msg, err)
		instrumentScatter(resultInvalid, 0)
		return nil
	}

	logs.WithTag("requested", req.Count).
		WithTag("points", len(res.Points)).
		WithTag("indexed", res.Indexed).
		WithClientID(m.clientID).
		Debug("scatter generated")

	instrumentScatter(resultOK, len(res.Points))
	respond.Send(messages.MsgTypeScatterResponse, msg.RequestID, res)
	return nil
}

func (m *Module) scatter(req messages.ScatterRequest) (messages.ScatterResponse, error) {
	if req.Count < 0 || req.Count > m.MaxPoints {
		return messages.ScatterResponse{}, errors.New("invalid point count").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("count", req.Count).
			WithTag("max_points", m.MaxPoints)
	}
	if req.Tries < 0 || req.Tries > m.MaxTries {
		return messages.ScatterResponse{}, errors.New("invalid tries").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("tries", req.Tries).
			WithTag("max_tries", m.MaxTries)
	}

	domain, err := req.Domain.Domain()
	if err != nil {
		return messages.ScatterResponse{}, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	probability, err := probabilityMap(rng, req.Probability, 0)
	if err != nil {
		return messages.ScatterResponse{}, err
	}

	points := sampling.WeightedRandomPointsInDomain(rng, domain, probability, req.Count, req.Tries)

	var index *octree.Octree[int]
	if req.Index != nil && !m.FeatureFlags.Enabled(featureflag.FlagDisableScatterIndex) {
		if index, err = m.buildIndex(domain, *req.Index); err != nil {
			return messages.ScatterResponse{}, err
		}

		payloads := make([]int, len(points))
		for i := range payloads {
			payloads[i] = i
		}
		index.InsertAll(points, payloads)
	}

	// A new generation always discards the previous index.
	m.state.Reset(points, index)

	res := messages.ScatterResponse{
		Points:    messages.Vec3s(points),
		Requested: req.Count,
		Indexed:   index != nil,
	}
	if index != nil {
		res.IndexSize = index.Size()
		res.NodeCount = index.ChildCount() + 1
	}
	return res, nil
}

func (m *Module) buildIndex(domain models.Domain, spec messages.IndexSpec) (*octree.Octree[int], error) {
	volume, err := domain.Bounds()
	if err != nil {
		return nil, errors.New("domain cannot be indexed").
			WithType(models.ErrTypeMsgInvalid).
			Wrap(err)
	}

	index, err := octree.New[int](volume, octree.Options{
		Capacity:  spec.Capacity,
		MaxDepth:  spec.MaxDepth,
		PreDivide: spec.PreDivide || m.FeatureFlags.Enabled(featureflag.FlagForcePreDivide),
	})
	if err != nil {
		return nil, errors.New("invalid index options").
			WithType(models.ErrTypeMsgInvalid).
			Wrap(err)
	}
	return index, nil
}

func (m *Module) handleQuery(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.ScatterQueryRequest
	if err := msg.DataTo(&req); err != nil {
		m.reject(respond, msg, err)
		instrumentQuery(resultInvalid)
		return nil
	}

	if req.Radius < 0 {
		m.reject(respond, msg, errors.New("query radius must not be negative").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("radius", req.Radius))
		instrumentQuery(resultInvalid)
		return nil
	}

	points, indices, ok := m.state.Query(models.Sphere{
		Center: req.Center.R3(),
		Radius: req.Radius,
	})
	if !ok {
		m.reject(respond, msg, errors.New("no scatter index to query").
			WithType(models.ErrTypeMsgInvalid))
		instrumentQuery(resultInvalid)
		return nil
	}

	instrumentQuery(resultOK)
	respond.Send(messages.MsgTypeScatterQueryResponse, msg.RequestID, messages.ScatterQueryResponse{
		Points:  messages.Vec3s(points),
		Indices: indices,
	})
	return nil
}

func (m *Module) reject(respond messages.ResponseSender, msg messages.Msg, err error) {
	logs.WithTag("msg_type", msg.Type).
		WithTag("request_id", msg.RequestID).
		WithClientID(m.clientID).
		Debug(err)

	messages.SendError(respond, msg.RequestID, err)
}
