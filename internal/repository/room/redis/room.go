package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getHostKey(hostId string) string {
	return "host:" + hostId
}

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	roomKey := r.getRoomKey(params.RoomId)

	exists, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if exists > 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomAlreadyExists)
		return room.ErrRoomAlreadyExists
	}

	if err := r.claimHost(ctx, params.HostId, params.RoomId); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey, room.Room{
		HostId:    params.HostId,
		HostName:  params.HostName,
		Movie:     "",
		Position:  0,
		IsPlaying: false,
		CreatedAt: params.CreatedAt,
	})
	r.expire(ctx, pipe, roomKey)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		r.rc.Del(ctx, r.getHostKey(params.HostId))
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

// claimHost records hostId as the host of roomId unless it already hosts a live room.
func (r repo) claimHost(ctx context.Context, hostId, roomId string) error {
	hostKey := r.getHostKey(hostId)

	ok, err := r.rc.SetNX(ctx, hostKey, roomId, max(r.expireDuration, 0)).Result()
	if err != nil {
		return fmt.Errorf("failed to set host: %w", err)
	}

	if ok {
		return nil
	}

	hostedId, err := r.rc.Get(ctx, hostKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get hosted room: %w", err)
	}

	if hostedId != "" {
		exists, err := r.rc.Exists(ctx, r.getRoomKey(hostedId)).Result()
		if err != nil {
			return fmt.Errorf("failed to check if room exists: %w", err)
		}

		if exists > 0 {
			return room.ErrAlreadyHosting
		}
	}

	if err := r.rc.Set(ctx, hostKey, roomId, max(r.expireDuration, 0)).Err(); err != nil {
		return fmt.Errorf("failed to set host: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	roomKey := r.getRoomKey(roomId)

	cmd := r.rc.HGetAll(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	if len(cmd.Val()) == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	var rm room.Room
	if err := cmd.Scan(&rm); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, fmt.Errorf("failed to scan room: %w", err)
	}
	rm.Id = roomId

	r.expire(ctx, r.rc, roomKey, r.getHostKey(rm.HostId))

	return rm, nil
}

func (r repo) IsRoomExists(ctx context.Context, roomId string) (bool, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	res, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}

	return res > 0, nil
}

func (r repo) getHostId(ctx context.Context, roomKey string) (string, error) {
	hostId, err := r.rc.HGet(ctx, roomKey, "host_id").Result()
	if errors.Is(err, redis.Nil) {
		return "", room.ErrRoomNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get host id: %w", err)
	}

	return hostId, nil
}

func (r repo) UpdatePlayer(ctx context.Context, params *room.UpdatePlayerParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	roomKey := r.getRoomKey(params.RoomId)

	hostId, err := r.getHostId(ctx, roomKey)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey,
		"movie", params.Movie,
		"position", params.Position,
		"is_playing", params.IsPlaying,
	)
	r.expire(ctx, pipe, roomKey, r.getHostKey(hostId))

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

func (r repo) DeleteRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	roomKey := r.getRoomKey(roomId)

	hostId, err := r.getHostId(ctx, roomKey)
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	hostKey := r.getHostKey(hostId)
	hostedId, err := r.rc.Get(ctx, hostKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to get hosted room: %w", err)
	}

	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, roomKey)
	if hostedId == roomId {
		pipe.Del(ctx, hostKey)
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}

func (r repo) GetRoomIdsByHost(ctx context.Context, hostId string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "host_id", hostId)
	roomId, err := r.rc.Get(ctx, r.getHostKey(hostId)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, fmt.Errorf("failed to get hosted room: %w", err)
	}

	exists, err := r.IsRoomExists(ctx, roomId)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, nil
	}

	return []string{roomId}, nil
}
