package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// RealtimeHandler serves a single client connection by dispatching its
// requests to modules.
type RealtimeHandler struct {
	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	// The modules that serve client requests.
	Modules []modules.Module

	conn     *websocket.Conn
	clientID string
}

func (h *RealtimeHandler) HandleConnect(conn *websocket.Conn) {
	h.clientID = conn.Request().Header.Get(HeaderClientID)
	if h.clientID == "" {
		h.clientID = uuid.NewString()
	}
	h.conn = conn

	for _, m := range h.Modules {
		m.Init(h.clientID)
	}
}

func (h *RealtimeHandler) HandlePing(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	respond.Send(messages.MsgTypePingResponse, msg.RequestID, messages.PingResponse{
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (h *RealtimeHandler) HandleWithModule(ctx context.Context, m modules.Module, respond messages.ResponseSender, msg messages.Msg) error {
	err := m.HandleMsg(ctx, respond, msg)
	if errors.IsType(err, models.ErrTypeMsgSkip) {
		return err
	}
	if err != nil {
		return errors.New("handling message with module failed").
			WithTag("module", m.Name()).
			Wrap(err)
	}
	return nil
}

func (h *RealtimeHandler) HandleUnknownMsg(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	messages.SendError(respond, msg.RequestID, errors.New("unknown message type").
		WithType(models.ErrTypeMsgUnknown).
		WithTag("msg_type", msg.Type))
	return nil
}

func (h *RealtimeHandler) HandleDisconnect(_ error) {
	for _, m := range h.Modules {
		m.HandleDisconnect()
	}
}

func (h *RealtimeHandler) Receiver() messages.Receiver {
	return func() (messages.Msg, int, error) {
		return Receive(h.conn)
	}
}

func (h *RealtimeHandler) Sender() messages.Sender {
	return func(msg messages.Msg) (int, error) {
		return Send(h.conn, msg)
	}
}

func (h *RealtimeHandler) Close() {
}

func (h *RealtimeHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *RealtimeHandler) GetModules() []modules.Module {
	return h.Modules
}

func (h *RealtimeHandler) GetClientID() string {
	return h.clientID
}
