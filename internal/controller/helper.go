package controller

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sharetube/watchparty/internal/repository/connection"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

var idCounter atomic.Uint64

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + strconv.FormatUint(idCounter.Add(1), 36)
}

func (c controller) writeToConn(ctx context.Context, conn connection.Conn, output *Output) {
	if conn == nil {
		return
	}

	if err := conn.Send(output); err != nil {
		c.logger.DebugContext(ctx, "failed to send message", "type", output.Type, "error", err)
	}
}

func (c controller) broadcast(ctx context.Context, conns []connection.Conn, output *Output) {
	for _, conn := range conns {
		c.writeToConn(ctx, conn, output)
	}
}
