package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/protocol"
)

// ErrSessionTerminated is returned by Run when the server reports an error.
var ErrSessionTerminated = errors.New("session terminated")

const writeWait = 10 * time.Second

// Session is one websocket connection to a watchparty server.
type Session struct {
	conn   *websocket.Conn
	logger *slog.Logger
	// gorilla connections support one concurrent writer
	mu sync.Mutex
}

// WSURL returns the websocket endpoint for an http(s) or ws(s) server address.
func WSURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("failed to parse server url: %w", err)
	}

	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/ws"
	return u.String(), nil
}

func Dial(ctx context.Context, server string, logger *slog.Logger) (*Session, error) {
	wsURL, err := WSURL(server)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}

	return &Session{
		conn:   conn,
		logger: logger,
	}, nil
}

func (s *Session) Emit(messageType string, payload any) error {
	msg, err := protocol.NewMessage(messageType, payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)

	return s.conn.Close()
}

// Run reads server messages into r until ctx is done, the connection fails
// or the server reports an error.
func (s *Session) Run(ctx context.Context, r *Reconciler) error {
	stop := context.AfterFunc(ctx, func() {
		s.conn.Close()
	})
	defer stop()

	for {
		var msg protocol.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if err := Dispatch(r, msg); err != nil {
			if errors.Is(err, ErrSessionTerminated) {
				return err
			}

			s.logger.Warn("failed to handle message", "type", msg.Type, "error", err)
		}
	}
}

func decode[T any](msg protocol.Message) (T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}

	return payload, nil
}

// Dispatch applies one server message to r.
func Dispatch(r *Reconciler, msg protocol.Message) error {
	switch msg.Type {
	case protocol.TypeRoomCreated:
		p, err := decode[protocol.RoomCreatedOutput](msg)
		if err != nil {
			return err
		}
		r.HandleRoomCreated(p.RoomId)
	case protocol.TypeRoomJoined:
		p, err := decode[protocol.RoomJoinedOutput](msg)
		if err != nil {
			return err
		}
		return r.HandleRoomJoined(p.RoomId, p.Movie)
	case protocol.TypeError:
		p, err := decode[protocol.ErrorOutput](msg)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrSessionTerminated, p.Message)
	case protocol.TypeGuestJoined:
		r.HandleGuestJoined()
	case protocol.TypeMovieSelected:
		p, err := decode[protocol.MovieSelectedOutput](msg)
		if err != nil {
			return err
		}
		r.HandleMovieSelected(p.File)
	case protocol.TypePlay, protocol.TypePause, protocol.TypeSeek:
		p, err := decode[protocol.PlaybackOutput](msg)
		if err != nil {
			return err
		}
		switch msg.Type {
		case protocol.TypePlay:
			r.HandlePlay(p.Time)
		case protocol.TypePause:
			r.HandlePause(p.Time)
		default:
			r.HandleSeek(p.Time)
		}
	case protocol.TypeSyncRequest:
		p, err := decode[protocol.SyncRequestOutput](msg)
		if err != nil {
			return err
		}
		return r.HandleSyncRequest(p.GuestId, p.RoomId)
	case protocol.TypeSyncState:
		p, err := decode[protocol.SyncStateOutput](msg)
		if err != nil {
			return err
		}
		r.HandleSyncState(p.Time, p.Playing, p.Movie)
	case protocol.TypeChat:
		p, err := decode[protocol.ChatOutput](msg)
		if err != nil {
			return err
		}
		r.HandleChat(p.Name, p.Text)
	case protocol.TypeHostLeft, protocol.TypeRoomExpired:
		r.HandleHostLeft()
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	return nil
}
