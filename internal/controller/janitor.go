package controller

import (
	"context"
	"time"

	"github.com/sharetube/watchparty/internal/protocol"
)

// RunJanitor periodically notifies members of rooms that expired from idleness
// until ctx is cancelled.
func (c controller) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.expireIdleRooms(ctx); err != nil {
				c.logger.WarnContext(ctx, "failed to expire idle rooms", "error", err)
			}
		}
	}
}

func (c controller) expireIdleRooms(ctx context.Context) error {
	return c.loop.Do(ctx, func(ctx context.Context) error {
		closed, err := c.roomService.ExpireIdleRooms(ctx)
		for _, cr := range closed {
			c.broadcast(ctx, cr.Conns, &Output{
				Type:    protocol.TypeRoomExpired,
				Payload: protocol.RoomExpiredOutput{RoomId: cr.RoomId},
			})
		}

		return err
	})
}
