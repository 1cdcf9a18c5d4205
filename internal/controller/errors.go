package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/protocol"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/eventloop"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type validationError struct {
	errs []validator.ValidationError
}

func (e validationError) Error() string {
	return validator.Join(e.errs)
}

// errors whose text is safe to show to the client
var publicErrors = []error{
	room.ErrRoomNotFound,
	room.ErrAlreadyHosting,
	room.ErrAlreadyInRoom,
	room.ErrNotInRoom,
	room.ErrPermissionDenied,
	wsrouter.ErrUnknownMessageType,
	wsrouter.ErrInvalidMessage,
}

func (c controller) validateInput(input any) error {
	if errs, ok := c.validate.Validate(input); !ok {
		return validationError{errs: errs}
	}

	return nil
}

// dropRejected swallows errors for relayed messages that are rejected without a reply.
func (c controller) dropRejected(ctx context.Context, err error) error {
	if errors.Is(err, room.ErrRoomNotFound) ||
		errors.Is(err, room.ErrPermissionDenied) ||
		errors.Is(err, room.ErrNotInRoom) ||
		errors.Is(err, room.ErrEmptyMessage) {
		c.logger.WarnContext(ctx, "message dropped", "error", err)
		return nil
	}

	return err
}

func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	var message string
	var vErr validationError
	switch {
	case errors.As(err, &vErr):
		message = vErr.Error()
	case errors.Is(err, eventloop.ErrStopped), errors.Is(err, context.Canceled):
		c.logger.InfoContext(ctx, "message not handled", "error", err)
		return
	default:
		for _, publicErr := range publicErrors {
			if errors.Is(err, publicErr) {
				message = publicErr.Error()
				break
			}
		}
	}

	if message == "" {
		c.logger.ErrorContext(ctx, "failed to handle message", "error", err)
		message = "internal server error"
	} else {
		c.logger.WarnContext(ctx, "message rejected", "error", err)
	}

	cl := c.getClientFromCtx(ctx)
	if cl == nil {
		return
	}

	c.writeToConn(ctx, cl, &Output{
		Type:    protocol.TypeError,
		Payload: protocol.ErrorOutput{Message: message},
	})
}
