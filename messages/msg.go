// Package messages defines the JSON messages exchanged with clients over
// WebSocket connections.
package messages

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/models"
	"github.com/segmentio/encoding/json"
)

const (
	MsgTypePingRequest          = "ping_request"
	MsgTypePingResponse         = "ping_response"
	MsgTypeScatterRequest       = "scatter_request"
	MsgTypeScatterResponse      = "scatter_response"
	MsgTypeScatterQueryRequest  = "scatter_query_request"
	MsgTypeScatterQueryResponse = "scatter_query_response"
	MsgTypeBladeRequest         = "blade_request"
	MsgTypeBladeResponse        = "blade_response"
	MsgTypeErrorResponse        = "error_response"
)

// Msg is the envelope of every message. Data holds the type specific payload.
type Msg struct {
	Type      string          `json:"type"`
	RequestID uint32          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMsg returns a message with data encoded as its payload. A nil data
// leaves the payload empty.
func NewMsg(msgType string, requestID uint32, data any) (Msg, error) {
	msg := Msg{
		Type:      msgType,
		RequestID: requestID,
	}
	if data == nil {
		return msg, nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return Msg{}, errors.New("encoding message data failed").
			WithTag("msg_type", msgType).
			Wrap(err)
	}
	msg.Data = b
	return msg, nil
}

// Decode parses an encoded envelope.
func Decode(b []byte) (Msg, error) {
	var msg Msg
	if err := json.Unmarshal(b, &msg); err != nil {
		return Msg{}, errors.New("decoding message failed").
			WithType(models.ErrTypeMsgInvalid).
			Wrap(err)
	}
	if msg.Type == "" {
		return Msg{}, errors.New("message has no type").
			WithType(models.ErrTypeMsgInvalid)
	}
	return msg, nil
}

func (m Msg) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DataTo decodes the payload into v.
func (m Msg) DataTo(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return errors.New("decoding message data failed").
			WithType(models.ErrTypeMsgInvalid).
			WithTag("msg_type", m.Type).
			Wrap(err)
	}
	return nil
}

// TypeString returns the message type, or "unknown" when it is empty.
func (m Msg) TypeString() string {
	if m.Type == "" {
		return "unknown"
	}
	return m.Type
}

// Sender sends a message and returns the number of bytes written.
type Sender func(Msg) (int, error)

// Receiver receives a message and returns the number of bytes read.
type Receiver func() (Msg, int, error)

// ResponseSender queues messages for a connected client.
type ResponseSender interface {
	// Encodes data and sends it as a message of the given type.
	Send(msgType string, requestID uint32, data any)

	// Sends an already built message.
	SendMsg(Msg)
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// SendError sends an error response whose code is the type of err. Errors
// without type are reported as internal errors.
func SendError(respond ResponseSender, requestID uint32, err error) {
	code := errors.Type(err)
	if code == "" {
		code = models.ErrTypeInternal
	}

	respond.Send(MsgTypeErrorResponse, requestID, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
