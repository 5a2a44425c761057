package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/modules"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// Creates a testing environement to unit test handlers and modules.
func NewTestingEnv(t *testing.T, newHandler func() Handler) (*websocket.Conn, *websocket.Conn, func()) {
	var mutex sync.Mutex
	logger := t.Log

	logs.Encoder = func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	}

	logs.SetLogger(func(e logs.Entry) {
		mutex.Lock()
		defer mutex.Unlock()

		if logger != nil {
			logger(e)
		}
	})

	errors.Encoder = json.Marshal

	clientA, clientB, close := newTestingEnv(t, newHandler)
	return clientA, clientB, func() {
		mutex.Lock()
		defer mutex.Unlock()
		logger = nil
		close()
	}
}

func newTestingEnv(t *testing.T, newHandler func() Handler) (*websocket.Conn, *websocket.Conn, func()) {
	server := httptest.NewServer(websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			handler := newHandler()
			defer handler.Close()

			Handle(context.Background(), conn, handler)
		},
	})

	newConn := func() *websocket.Conn {
		config, err := websocket.NewConfig(
			strings.ReplaceAll(server.URL, "http://", "ws://"),
			"http://localhost",
		)
		if err != nil {
			t.Fatalf("error initializing web socket: %s", err)
		}

		config.Header.Set("User-Agent", "ted")
		config.Header.Set("X-Forwarded-for", "192.0.0.0")
		config.Header.Set(HeaderClientID, uuid.NewString())

		conn, err := websocket.DialConfig(config)
		if err != nil {
			t.Fatalf("error dialing web socket: %s", err)
		}

		return conn
	}

	clientA := newConn()
	clientB := newConn()

	return clientA, clientB, func() {
		clientA.Close()
		clientB.Close()
		server.Close()
	}
}

// SendTestMsg sends a message built from data to the server.
func SendTestMsg(t *testing.T, conn *websocket.Conn, msgType string, requestID uint32, data any) {
	msg, err := messages.NewMsg(msgType, requestID, data)
	if err != nil {
		t.Fatalf("error building message: %s", err)
	}

	if _, err := Send(conn, msg); err != nil {
		t.Fatalf("error sending message: %s", err)
	}
}

// ReceiveTestMsg returns the next message of the given type, skipping the
// others, or fails after timeout.
func ReceiveTestMsg(t *testing.T, conn *websocket.Conn, msgType string, timeout time.Duration) messages.Msg {
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{})

	for {
		msg, _, err := Receive(conn)
		if err != nil {
			t.Fatalf("error receiving %s: %s", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

func newTestHandler(newModule ...func() modules.Module) func() Handler {
	return func() Handler {
		modules := make([]modules.Module, len(newModule))
		for i, nm := range newModule {
			modules[i] = nm()
		}

		var h Handler = &RealtimeHandler{
			ClientIdleTimeout: time.Minute,
			Modules:           modules,
		}

		h = HandlerWithLogs(h, time.Millisecond*100)
		h = HandlerWithMetrics(h, "https://sprout-test.com")
		return h
	}
}
