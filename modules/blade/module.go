package blade

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/sprout/featureflag"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/modules"
	"github.com/google/uuid"
)

const DefaultMaxBatchSize = 256

// Module serves blade requests.
type Module struct {
	FeatureFlags featureflag.FeatureFlag

	// The maximum number of blades generated by a request.
	MaxBatchSize int

	// The number of goroutines generating a batch. Zero uses GOMAXPROCS.
	Workers int

	clientID string
}

func (m *Module) Name() string {
	return "blade"
}

func (m *Module) Init(clientID string) {
	m.clientID = clientID

	if m.MaxBatchSize == 0 {
		m.MaxBatchSize = DefaultMaxBatchSize
	}
}

func (m *Module) HandleMsg(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	switch msg.Type {
	case messages.MsgTypeBladeRequest:
		return m.handleBlade(ctx, respond, msg)

	default:
		return modules.ErrModuleMsgSkip
	}
}

func (m *Module) HandleDisconnect() {
}

func (m *Module) handleBlade(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.BladeRequest
	if err := msg.DataTo(&req); err != nil {
		m.reject(respond, msg, err)
		return nil
	}

	c, err := configFromRequest(req)
	if err != nil {
		m.reject(respond, msg, err)
		return nil
	}
	m.FeatureFlags.IfSet(featureflag.FlagDisableNormalRecompute, func() {
		c.Warp.SkipNormals = true
	})

	starts, err := startsFromRequest(req, m.MaxBatchSize)
	if err != nil {
		m.reject(respond, msg, err)
		return nil
	}

	begin := time.Now()
	batchID := uuid.NewString()
	instances := GenerateBatch(ctx, req.Seed, starts, c, m.Workers)

	res := messages.BladeResponse{
		BatchID:   batchID,
		Instances: make([]messages.BladeInstance, len(instances)),
	}
	var failed int
	for i, inst := range instances {
		if inst.Err != nil {
			failed++
		}
		res.Instances[i] = instanceToMessage(inst)
	}

	logs.WithTag("batch_id", batchID).
		WithTag("instances", len(instances)).
		WithTag("failed", failed).
		WithTag("duration", time.Since(begin)).
		WithClientID(m.clientID).
		Debug("blade batch generated")

	instrumentRequest(resultOK)
	respond.Send(messages.MsgTypeBladeResponse, msg.RequestID, res)
	return nil
}

func (m *Module) reject(respond messages.ResponseSender, msg messages.Msg, err error) {
	logs.WithTag("msg_type", msg.Type).
		WithTag("request_id", msg.RequestID).
		WithClientID(m.clientID).
		Debug(err)

	instrumentRequest(resultInvalid)
	messages.SendError(respond, msg.RequestID, err)
}
