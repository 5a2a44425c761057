package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize    = 512
	receiveChanSize = 64
)

// Handler represents a sprout connection handler.
type Handler interface {
	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a ping request.
	HandlePing(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handle a message with a module. Returns an error typed as a skipped
	// message when the module does not handle it.
	HandleWithModule(ctx context.Context, module modules.Module, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a message that no module handled.
	HandleUnknownMsg(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Creates a message receiver used to receive incoming messages.
	Receiver() messages.Receiver

	// Creates a message sender passed in service methods in order to send
	// messages.
	Sender() messages.Sender

	// Closes the service and releases its allocated resources.
	Close()

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	// Returns the modules.
	GetModules() []modules.Module

	// Get ClientID
	GetClientID() string
}

// Handle handles the given service.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	// The WebSocket connection.
	Conn *websocket.Conn

	// The sprout handler.
	Handler Handler

	sendChan       chan messages.Msg
	receiveChan    chan messages.Msg
	sender         messages.Sender
	receiver       messages.Receiver
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Handler.HandleConnect(h.Conn)

	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	var wg sync.WaitGroup

	h.sendChan = make(chan messages.Msg, sendChanSize)
	h.sender = h.Handler.Sender()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()

	h.receiveChan = make(chan messages.Msg, receiveChanSize)
	h.receiver = h.Handler.Receiver()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	var responder = responseSender{
		send:    h.send,
		sendMsg: h.sendMsg,
	}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			h.disconnect(ctx.Err())

		case <-idleTimer.C:
			h.disconnect(errors.New("idle connection").WithTag("duration", idleTimeout))

		case msg := <-h.receiveChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if err := h.handleMessage(ctx, msg, responder); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			h.handleDisconnect(err)
			if ctx.Err() == nil {
				// cancel context so go routines can cleanly exit
				cancel()
			}
		}
	}

	wg.Wait()
}

func (h *handler) send(msgType string, requestID uint32, data any) {
	msg, err := messages.NewMsg(msgType, requestID, data)
	if err != nil {
		logs.WithTag("msg_type", msgType).
			WithTag("request_id", requestID).
			WithClientID(h.Handler.GetClientID()).
			Error(err)
		return
	}
	h.sendChan <- msg
}

func (h *handler) sendMsg(msg messages.Msg) {
	h.sendChan <- msg
}

func (h *handler) startSending(ctx context.Context) {
	defer func() {
		for len(h.sendChan) != 0 {
			<-h.sendChan
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if _, err := h.sender(msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		default:
			msg, _, err := h.receiver()
			if errors.IsType(err, models.ErrTypeMsgInvalid) {
				h.rejectFrame(ctx, err)
				continue
			}
			if err != nil {
				h.disconnect(errors.New("receiving message failed").Wrap(err))
				return
			}

			select {
			case <-ctx.Done():
				return
			case h.receiveChan <- msg:
			}
		}
	}
}

// rejectFrame answers a frame that could not be decoded without dropping the
// connection.
func (h *handler) rejectFrame(ctx context.Context, err error) {
	msg, encodeErr := messages.NewMsg(messages.MsgTypeErrorResponse, 0, messages.ErrorResponse{
		Code:    models.ErrTypeMsgInvalid,
		Message: err.Error(),
	})
	if encodeErr != nil {
		return
	}

	select {
	case <-ctx.Done():
	case h.sendChan <- msg:
	}
}

func (h *handler) handleMessage(ctx context.Context, msg messages.Msg, responder messages.ResponseSender) error {
	if msg.Type == messages.MsgTypePingRequest {
		return h.Handler.HandlePing(ctx, responder, msg)
	}

	handled := false
	for _, m := range h.Handler.GetModules() {
		err := h.Handler.HandleWithModule(ctx, m, responder, msg)
		if errors.IsType(err, models.ErrTypeMsgSkip) {
			continue
		}
		if err != nil {
			return err
		}
		handled = true
	}

	if !handled {
		return h.Handler.HandleUnknownMsg(ctx, responder, msg)
	}
	return nil
}

func (h *handler) disconnect(err error) {
	h.disconnectChan <- err
}

func (h *handler) handleDisconnect(err error) {
	h.Conn.Close()
	h.Handler.HandleDisconnect(err)
}

type responseSender struct {
	send    func(string, uint32, any)
	sendMsg func(messages.Msg)
}

func (r responseSender) Send(msgType string, requestID uint32, data any) {
	r.send(msgType, requestID, data)
}

func (r responseSender) SendMsg(msg messages.Msg) {
	r.sendMsg(msg)
}
