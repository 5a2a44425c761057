package websocket

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/messages"
	"golang.org/x/net/websocket"
)

// HeaderClientID is the header a client can use to give its own id.
const HeaderClientID = "X-Sprout-Client-Id"

// Send writes msg as a text frame and returns the number of bytes written.
func Send(conn *websocket.Conn, msg messages.Msg) (int, error) {
	b, err := msg.Encode()
	if err != nil {
		return 0, errors.New("encoding message failed").
			WithTag("msg_type", msg.TypeString()).
			Wrap(err)
	}

	if err := websocket.Message.Send(conn, string(b)); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Receive reads a frame and decodes it. Frames that are not valid messages
// return an error typed as an invalid request, along with the number of bytes
// read.
func Receive(conn *websocket.Conn) (messages.Msg, int, error) {
	var b []byte
	if err := websocket.Message.Receive(conn, &b); err != nil {
		return messages.Msg{}, 0, err
	}

	msg, err := messages.Decode(b)
	return msg, len(b), err
}
