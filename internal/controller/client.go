package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingInterval      = 30 * time.Second
	maxMessageSize    = 1 << 16
	defaultSendBuffer = 64
)

var errClientClosed = errors.New("client closed")

// client owns the write side of one websocket connection. Messages are queued by Send
// and written by writeLoop, so the socket has exactly one writer.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

func newClient(id string, conn *websocket.Conn, sendBuffer int, logger *slog.Logger) *client {
	return &client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Send queues v as a JSON text frame. It never blocks: when the queue is full
// the oldest queued frame is dropped.
func (cl *client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case <-cl.done:
		return errClientClosed
	default:
	}

	select {
	case cl.send <- data:
		return nil
	default:
	}

	select {
	case <-cl.send:
		cl.logger.Warn("send queue full, dropping oldest message", "conn_id", cl.id)
	default:
	}

	select {
	case cl.send <- data:
	default:
		cl.logger.Warn("send queue full, dropping message", "conn_id", cl.id)
	}

	return nil
}

func (cl *client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		close(cl.stopped)
	}()

	for {
		select {
		case <-cl.done:
			// flush what is already queued so a final message is not lost
			for {
				select {
				case data := <-cl.send:
					if err := cl.write(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					cl.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		case data := <-cl.send:
			if err := cl.write(websocket.TextMessage, data); err != nil {
				cl.logger.DebugContext(ctx, "failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			if err := cl.write(websocket.PingMessage, nil); err != nil {
				cl.logger.DebugContext(ctx, "failed to write ping", "error", err)
				return
			}
		}
	}
}

func (cl *client) write(messageType int, data []byte) error {
	if err := cl.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return cl.conn.WriteMessage(messageType, data)
}

// close stops the write loop and waits for it to exit.
func (cl *client) close() {
	cl.once.Do(func() {
		close(cl.done)
	})
	<-cl.stopped
}
