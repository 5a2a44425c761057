package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/modules"
	"github.com/aukilabs/sprout/modules/blade"
	"github.com/aukilabs/sprout/modules/scatter"
	"github.com/stretchr/testify/require"
)

type testModule struct {
	mutex        sync.Mutex
	clientID     string
	handledMsgs  []string
	skippedMsgs  []string
	onDisconnect func()
}

func (m *testModule) Name() string {
	return "test-module"
}

func (m *testModule) Init(clientID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.clientID = clientID
}

func (m *testModule) HandleMsg(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch msg.Type {
	case "echo_request":
		m.handledMsgs = append(m.handledMsgs, msg.Type)
		respond.SendMsg(messages.Msg{
			Type:      "echo_response",
			RequestID: msg.RequestID,
			Data:      msg.Data,
		})
		return nil

	default:
		m.skippedMsgs = append(m.skippedMsgs, msg.Type)
		return modules.ErrModuleMsgSkip
	}
}

func (m *testModule) HandleDisconnect() {
	if m.onDisconnect != nil {
		m.onDisconnect()
	}
}

func TestModule(t *testing.T) {
	disconnected := make(chan *testModule, 2)

	clientA, _, close := NewTestingEnv(t, newTestHandler(func() modules.Module {
		m := &testModule{}
		m.onDisconnect = func() {
			disconnected <- m
		}
		return m
	}))
	defer close()

	SendTestMsg(t, clientA, "echo_request", 1, map[string]string{"hello": "world"})
	msg := ReceiveTestMsg(t, clientA, "echo_response", testTimeout)
	require.Equal(t, uint32(1), msg.RequestID)
	require.JSONEq(t, `{"hello":"world"}`, string(msg.Data))

	SendTestMsg(t, clientA, "unknown_request", 2, nil)
	msg = ReceiveTestMsg(t, clientA, messages.MsgTypeErrorResponse, testTimeout)
	require.Equal(t, uint32(2), msg.RequestID)

	// Pings are answered by the handler itself.
	SendTestMsg(t, clientA, messages.MsgTypePingRequest, 3, nil)
	ReceiveTestMsg(t, clientA, messages.MsgTypePingResponse, testTimeout)

	clientA.Close()

	var modA *testModule
	select {
	case modA = <-disconnected:
	case <-time.After(testTimeout):
		t.Fatal("module was not disconnected")
	}

	modA.mutex.Lock()
	defer modA.mutex.Unlock()

	require.NotEmpty(t, modA.clientID)
	require.Equal(t, []string{"echo_request"}, modA.handledMsgs)
	require.Equal(t, []string{"unknown_request"}, modA.skippedMsgs)
}

func TestScatterAndBladeModules(t *testing.T) {
	clientA, _, close := NewTestingEnv(t, newTestHandler(
		func() modules.Module { return &scatter.Module{} },
		func() modules.Module { return &blade.Module{Workers: 2} },
	))
	defer close()

	SendTestMsg(t, clientA, messages.MsgTypeScatterRequest, 1, messages.ScatterRequest{
		Seed: 3,
		Domain: messages.DomainSpec{
			Type:   "sphere",
			Radius: 5,
		},
		Probability: messages.ProbabilitySpec{Type: "uniform", Value: 1},
		Count:       20,
		Tries:       1,
		Index:       &messages.IndexSpec{Capacity: 4, MaxDepth: 4},
	})
	msg := ReceiveTestMsg(t, clientA, messages.MsgTypeScatterResponse, testTimeout)

	var scattered messages.ScatterResponse
	require.NoError(t, msg.DataTo(&scattered))
	require.Len(t, scattered.Points, 20)
	require.True(t, scattered.Indexed)

	SendTestMsg(t, clientA, messages.MsgTypeBladeRequest, 2, messages.BladeRequest{
		Seed:   3,
		Starts: scattered.Points[:4],
	})
	msg = ReceiveTestMsg(t, clientA, messages.MsgTypeBladeResponse, testTimeout)
	require.Equal(t, uint32(2), msg.RequestID)

	var blades messages.BladeResponse
	require.NoError(t, msg.DataTo(&blades))
	require.Len(t, blades.Instances, 4)
	for i, inst := range blades.Instances {
		require.Empty(t, inst.Error)
		require.Equal(t, scattered.Points[i], inst.Skeleton[0].Position)
	}
}
