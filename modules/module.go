package modules

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sprout/messages"
	"github.com/aukilabs/sprout/models"
)

// ErrModuleMsgSkip is returned by modules for messages they do not handle.
var ErrModuleMsgSkip = errors.New("message skipped by module").
	WithType(models.ErrTypeMsgSkip)

// Module is the interface that describes a module that extends Sprout
// capabilities. A module instance serves a single connection.
type Module interface {
	// Returns the module name.
	Name() string

	// Initializes the module for the given client.
	Init(clientID string)

	// Handles a given message. Modules are free to decide whether they handle a
	// message.
	//
	// Returning ErrModuleMsgSkip indicates that handling a message was skipped.
	// Invalid requests are answered with an error response and do not return
	// an error.
	//
	// Any other returned errors causes the current WebSocket client to be
	// disconnected.
	HandleMsg(context.Context, messages.ResponseSender, messages.Msg) error

	// Handles a client disconnection.
	HandleDisconnect()
}
