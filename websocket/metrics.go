package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
	"github.com/aukilabs/sprout/modules"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/websocket"
)

const (
	errTypeLabel        = "error_type"
	errCodeLabel        = "error_code"
	msgTypeLabel        = "msg_type"
	moduleLabel         = "module"
	publicEndpointLabel = "public_endpoint"

	defaultModule = "sprout"
)

var (
	wsConnectedClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ws_connected_clients",
		Help: "The number of connected clients.",
	}, []string{
		publicEndpointLabel,
	})

	wsReceivedMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_received_msgs",
		Help: "The number of messages received from WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})

	wsReceivedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_received_bytes",
		Help: "The number of bytes received from WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})

	wsReceiveError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_receive_errors",
		Help: "The errors that occured while receiving a websocket message.",
	}, []string{
		publicEndpointLabel,
		errTypeLabel,
	})

	wsSentMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_msgs",
		Help: "The number of messages sent to WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})

	wsSentBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_bytes",
		Help: "The number of bytes sent to WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})

	wsSendError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_send_errors",
		Help: "The errors that occured while sending a websocket message.",
	}, []string{
		publicEndpointLabel,
		errTypeLabel,
		msgTypeLabel,
	})

	wsSentErrorResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_error_responses",
		Help: "The number of error responses sent to WebSocket connections, by error code.",
	}, []string{
		publicEndpointLabel,
		errCodeLabel,
	})

	wsMsgLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "ws_msg_latency",
		Help: "The time to process a WebSocket msg.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
		moduleLabel,
	})
)

func HandlerWithMetrics(h Handler, publicEndpoint string) Handler {
	return &handlerWithMetrics{
		Handler:        h,
		publicEndpoint: publicEndpoint,
	}
}

type handlerWithMetrics struct {
	Handler

	publicEndpoint string
}

func (h *handlerWithMetrics) HandleConnect(conn *websocket.Conn) {
	wsConnectedClients.WithLabelValues(h.publicEndpoint).Inc()

	h.Handler.HandleConnect(conn)
}

func (h *handlerWithMetrics) HandlePing(ctx context.Context, sender messages.ResponseSender, msg messages.Msg) error {
	return h.measureLatency(msg, defaultModule, func() error {
		return h.Handler.HandlePing(ctx, sender, msg)
	})
}

func (h *handlerWithMetrics) HandleDisconnect(err error) {
	wsConnectedClients.WithLabelValues(h.publicEndpoint).Dec()

	h.Handler.HandleDisconnect(err)
}

func (h *handlerWithMetrics) HandleWithModule(ctx context.Context, module modules.Module, sender messages.ResponseSender, msg messages.Msg) error {
	return h.measureLatency(msg, module.Name(), func() error {
		return h.Handler.HandleWithModule(ctx, module, sender, msg)
	})
}

func (h *handlerWithMetrics) HandleUnknownMsg(ctx context.Context, sender messages.ResponseSender, msg messages.Msg) error {
	return h.measureLatency(msg, defaultModule, func() error {
		return h.Handler.HandleUnknownMsg(ctx, sender, msg)
	})
}

func (h *handlerWithMetrics) Receiver() messages.Receiver {
	receive := h.Handler.Receiver()

	return func() (messages.Msg, int, error) {
		msg, n, err := receive()
		if err != nil {
			wsReceiveError.WithLabelValues(h.publicEndpoint, errors.Type(err)).Inc()
		} else {
			wsReceivedMsgs.With(h.msgLabels(msg)).Inc()
		}
		if n != 0 {
			wsReceivedBytes.With(h.msgLabels(msg)).Add(float64(n))
		}
		return msg, n, err
	}
}

func (h *handlerWithMetrics) Sender() messages.Sender {
	sender := h.Handler.Sender()

	return func(msg messages.Msg) (int, error) {
		n, err := sender(msg)
		if err != nil {
			wsSendError.WithLabelValues(h.publicEndpoint, errors.Type(err), msg.TypeString()).Inc()
		}
		if n == 0 {
			return n, err
		}

		wsSentMsgs.With(h.msgLabels(msg)).Inc()
		wsSentBytes.With(h.msgLabels(msg)).Add(float64(n))
		if msg.Type == messages.MsgTypeErrorResponse {
			wsSentErrorResponses.WithLabelValues(h.publicEndpoint, errorCode(msg)).Inc()
		}
		return n, err
	}
}

func (h *handlerWithMetrics) msgLabels(msg messages.Msg) prometheus.Labels {
	return prometheus.Labels{
		publicEndpointLabel: h.publicEndpoint,
		msgTypeLabel:        msg.TypeString(),
	}
}

// errorCode returns the code carried by an error response.
func errorCode(msg messages.Msg) string {
	var res messages.ErrorResponse
	if err := msg.DataTo(&res); err != nil || res.Code == "" {
		return models.ErrTypeInternal
	}
	return res.Code
}

func (h *handlerWithMetrics) measureLatency(msg messages.Msg, module string, f func() error) error {
	start := time.Now()

	err := f()
	if errors.IsType(err, models.ErrTypeMsgSkip) {
		return err
	}

	wsMsgLatency.
		WithLabelValues(h.publicEndpoint, msg.TypeString(), module).
		Observe(time.Since(start).Seconds())

	return err
}
