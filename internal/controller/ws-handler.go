package controller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/protocol"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

func (c controller) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	connId := uuid.NewString()
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("conn_id", connId))
	cl := newClient(connId, conn, c.sendBuffer, c.logger)
	go cl.writeLoop(ctx)
	defer cl.close()

	if err := c.loop.Do(ctx, func(ctx context.Context) error {
		return c.roomService.ConnectMember(ctx, connId, cl)
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to connect member", "error", err)
		return
	}
	defer c.disconnect(context.WithoutCancel(ctx), connId)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.logger.InfoContext(ctx, "websocket connected")
	if err := c.wsRouter.ServeConn(context.WithValue(ctx, clientCtxKey, cl), conn); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.logger.InfoContext(ctx, "websocket closed", "error", err)
		} else {
			c.logger.DebugContext(ctx, "websocket closed", "error", err)
		}
	}
}

// disconnect detaches the connection and closes the rooms it hosted.
func (c controller) disconnect(ctx context.Context, connId string) {
	if err := c.loop.Do(ctx, func(ctx context.Context) error {
		resp, err := c.roomService.DisconnectMember(ctx, connId)
		if err != nil {
			return err
		}

		for _, closed := range resp.ClosedRooms {
			c.broadcast(ctx, closed.Conns, &Output{
				Type:    protocol.TypeHostLeft,
				Payload: protocol.HostLeftOutput{},
			})
		}

		return nil
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect member", "error", err)
	}
}

func (c controller) handleCreateRoom(ctx context.Context, _ *websocket.Conn, input protocol.CreateRoomInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	createRoomResp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		SenderId: c.getConnIdFromCtx(ctx),
		Name:     input.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	c.writeToConn(ctx, c.getClientFromCtx(ctx), &Output{
		Type:    protocol.TypeRoomCreated,
		Payload: protocol.RoomCreatedOutput{RoomId: createRoomResp.RoomId},
	})

	return nil
}

func (c controller) handleJoinRoom(ctx context.Context, _ *websocket.Conn, input protocol.JoinRoomInput) error {
	input.RoomId = domain.NormalizeRoomId(input.RoomId)
	if err := c.validateInput(input); err != nil {
		return err
	}

	connId := c.getConnIdFromCtx(ctx)
	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		SenderId: connId,
		RoomId:   input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	c.writeToConn(ctx, c.getClientFromCtx(ctx), &Output{
		Type: protocol.TypeRoomJoined,
		Payload: protocol.RoomJoinedOutput{
			RoomId: joinRoomResp.RoomId,
			Movie:  joinRoomResp.Movie,
		},
	})

	c.writeToConn(ctx, joinRoomResp.HostConn, &Output{
		Type: protocol.TypeGuestJoined,
		Payload: protocol.GuestJoinedOutput{
			GuestId: connId,
			RoomId:  joinRoomResp.RoomId,
		},
	})

	return nil
}

func (c controller) handleSelectMovie(ctx context.Context, _ *websocket.Conn, input protocol.SelectMovieInput) error {
	input.RoomId = domain.NormalizeRoomId(input.RoomId)
	if err := c.validateInput(input); err != nil {
		return err
	}

	selectMovieResp, err := c.roomService.SelectMovie(ctx, &room.SelectMovieParams{
		SenderId: c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		File:     input.File,
	})
	if err != nil {
		return c.dropRejected(ctx, fmt.Errorf("failed to select movie: %w", err))
	}

	c.broadcast(ctx, selectMovieResp.Conns, &Output{
		Type:    protocol.TypeMovieSelected,
		Payload: protocol.MovieSelectedOutput{File: selectMovieResp.Player.Movie},
	})

	return nil
}

type playerUpdater func(context.Context, *room.UpdatePlayerParams) (room.UpdatePlayerResponse, error)

func (c controller) handlePlayback(messageType string, update playerUpdater) func(context.Context, *websocket.Conn, protocol.PlaybackInput) error {
	return func(ctx context.Context, _ *websocket.Conn, input protocol.PlaybackInput) error {
		input.RoomId = domain.NormalizeRoomId(input.RoomId)
		if err := c.validateInput(input); err != nil {
			return err
		}

		updatePlayerResp, err := update(ctx, &room.UpdatePlayerParams{
			SenderId: c.getConnIdFromCtx(ctx),
			RoomId:   input.RoomId,
			Time:     input.Time,
		})
		if err != nil {
			return c.dropRejected(ctx, fmt.Errorf("failed to update player: %w", err))
		}

		c.broadcast(ctx, updatePlayerResp.Conns, &Output{
			Type:    messageType,
			Payload: protocol.PlaybackOutput{Time: updatePlayerResp.Player.Time},
		})

		return nil
	}
}

func (c controller) handlePlay(ctx context.Context, conn *websocket.Conn, input protocol.PlaybackInput) error {
	return c.handlePlayback(protocol.TypePlay, c.roomService.Play)(ctx, conn, input)
}

func (c controller) handlePause(ctx context.Context, conn *websocket.Conn, input protocol.PlaybackInput) error {
	return c.handlePlayback(protocol.TypePause, c.roomService.Pause)(ctx, conn, input)
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, input protocol.PlaybackInput) error {
	return c.handlePlayback(protocol.TypeSeek, c.roomService.Seek)(ctx, conn, input)
}

func (c controller) handleSyncRequest(ctx context.Context, _ *websocket.Conn, input protocol.SyncRequestInput) error {
	input.RoomId = domain.NormalizeRoomId(input.RoomId)
	if err := c.validateInput(input); err != nil {
		return err
	}

	connId := c.getConnIdFromCtx(ctx)
	syncRequestResp, err := c.roomService.SyncRequest(ctx, &room.SyncRequestParams{
		SenderId: connId,
		RoomId:   input.RoomId,
	})
	if err != nil {
		return fmt.Errorf("failed to request sync: %w", err)
	}

	c.writeToConn(ctx, syncRequestResp.HostConn, &Output{
		Type: protocol.TypeSyncRequest,
		Payload: protocol.SyncRequestOutput{
			GuestId: connId,
			RoomId:  syncRequestResp.RoomId,
		},
	})

	return nil
}

func (c controller) handleSyncState(ctx context.Context, _ *websocket.Conn, input protocol.SyncStateInput) error {
	input.RoomId = domain.NormalizeRoomId(input.RoomId)
	if err := c.validateInput(input); err != nil {
		return err
	}

	syncStateResp, err := c.roomService.SyncState(ctx, &room.SyncStateParams{
		SenderId: c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		GuestId:  input.GuestId,
		Time:     input.Time,
		Playing:  input.Playing,
		Movie:    input.Movie,
	})
	if err != nil {
		return c.dropRejected(ctx, fmt.Errorf("failed to send sync state: %w", err))
	}

	c.writeToConn(ctx, syncStateResp.GuestConn, &Output{
		Type: protocol.TypeSyncState,
		Payload: protocol.SyncStateOutput{
			Time:    input.Time,
			Playing: input.Playing,
			Movie:   input.Movie,
		},
	})

	return nil
}

func (c controller) handleChat(ctx context.Context, _ *websocket.Conn, input protocol.ChatInput) error {
	input.RoomId = domain.NormalizeRoomId(input.RoomId)
	if err := c.validateInput(input); err != nil {
		return err
	}

	chatResp, err := c.roomService.Chat(ctx, &room.ChatParams{
		SenderId: c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Name:     input.Name,
		Text:     input.Text,
	})
	if err != nil {
		return c.dropRejected(ctx, fmt.Errorf("failed to send chat message: %w", err))
	}

	c.broadcast(ctx, chatResp.Conns, &Output{
		Type: protocol.TypeChat,
		Payload: protocol.ChatOutput{
			Name: chatResp.Name,
			Text: chatResp.Text,
		},
	})

	return nil
}
