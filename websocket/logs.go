package websocket

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/sprout/messages"
	"golang.org/x/net/websocket"
)

func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	originalRequest *http.Request

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	req := conn.Request()
	h.originalRequest = req

	logs.WithTag("http_headers", struct {
		UserAgent     string `json:"user_agent,omitempty"`
		XForwardedFor string `json:"x_forwarded_for,omitempty"`
	}{
		UserAgent:     req.UserAgent(),
		XForwardedFor: req.Header.Get("X-Forwarded-For"),
	}).
		WithClientID(h.GetClientID()).
		Info("new client is connected")
}

func (h *handlerWithLogs) HandleUnknownMsg(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	logs.WithTag("msg_type", msg.TypeString()).
		WithTag("request_id", msg.RequestID).
		WithClientID(h.GetClientID()).
		Warn("no module handled the message")

	return h.Handler.HandleUnknownMsg(ctx, respond, msg)
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	entry := logs.WithTag(logs.ClientIDTag, h.GetClientID())
	if err != nil && !isConnClosed(err) {
		entry = entry.WithTag("reason", err.Error())
	}
	entry.Info("client disconnected")
}

func (h *handlerWithLogs) Receiver() messages.Receiver {
	receive := h.Handler.Receiver()

	return func() (messages.Msg, int, error) {
		msg, n, err := receive()
		if err != nil && !isConnClosed(err) {
			logs.WithTag(logs.ClientIDTag, h.GetClientID()).
				Error(errors.New("receiving message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag("msg_type", msg.TypeString()).
				WithTag("request_id", msg.RequestID).
				WithClientID(h.GetClientID()).
				Debug("message received")
			h.incCounter(msg.TypeString())
		}
		return msg, n, err
	}
}

func (h *handlerWithLogs) Sender() messages.Sender {
	sender := h.Handler.Sender()

	return func(msg messages.Msg) (int, error) {
		msgType := msg.TypeString()

		n, err := sender(msg)
		if err != nil && !isConnClosed(err) {
			logs.WithTag("msg_type", msgType).
				WithClientID(h.GetClientID()).
				Error(errors.New("sending message failed").Wrap(err))
		} else if err == nil {
			logs.WithTag("msg_type", msgType).
				WithTag("request_id", msg.RequestID).
				WithTag("bytes", n).
				WithClientID(h.GetClientID()).
				Debug("message sent")
		}
		return n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.closeSummaryWorker()
	h.logSummary()
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) incCounter(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) logSummary() {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	if len(h.counter) == 0 {
		return
	}

	entry := logs.
		WithTag("time_interval", h.summaryInterval).
		WithClientID(h.GetClientID())

	for k, v := range h.counter {
		entry = entry.WithTag(k, v)
		delete(h.counter, k)
	}

	entry.Info("inbound message summary")
}

func isConnClosed(err error) bool {
	return stderrors.Is(err, io.EOF) || stderrors.Is(err, net.ErrClosed)
}
