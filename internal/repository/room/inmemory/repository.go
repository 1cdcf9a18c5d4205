package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/watchparty/internal/repository/room"
)

type entry struct {
	room      room.Room
	expiresAt time.Time
}

type repo struct {
	rooms  map[string]*entry
	hosts  map[string]string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewRepo returns a room registry kept in process memory. A room that is not
// accessed for ttl is treated as gone; ttl <= 0 disables expiry.
func NewRepo(ttl time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*entry),
		hosts:  make(map[string]string),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (r *repo) deadline() time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}

	return r.now().Add(r.ttl)
}

func (r *repo) expired(e *entry) bool {
	return !e.expiresAt.IsZero() && !r.now().Before(e.expiresAt)
}

// lookup returns a live entry, dropping it when its deadline has passed. Caller holds the write lock.
func (r *repo) lookup(roomId string) (*entry, bool) {
	e, ok := r.rooms[roomId]
	if !ok {
		return nil, false
	}

	if r.expired(e) {
		r.remove(roomId, e)
		return nil, false
	}

	return e, true
}

func (r *repo) remove(roomId string, e *entry) {
	delete(r.rooms, roomId)
	if r.hosts[e.room.HostId] == roomId {
		delete(r.hosts, e.room.HostId)
	}
}

func (r *repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(params.RoomId); ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomAlreadyExists)
		return room.ErrRoomAlreadyExists
	}

	if hostedId, ok := r.hosts[params.HostId]; ok {
		if _, live := r.lookup(hostedId); live {
			r.logger.DebugContext(ctx, "returned", "error", room.ErrAlreadyHosting)
			return room.ErrAlreadyHosting
		}
	}

	r.rooms[params.RoomId] = &entry{
		room: room.Room{
			Id:        params.RoomId,
			HostId:    params.HostId,
			HostName:  params.HostName,
			CreatedAt: params.CreatedAt,
		},
		expiresAt: r.deadline(),
	}
	r.hosts[params.HostId] = params.RoomId

	return nil
}

func (r *repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookup(roomId)
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	e.expiresAt = r.deadline()

	return e.room, nil
}

func (r *repo) IsRoomExists(ctx context.Context, roomId string) (bool, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.lookup(roomId)

	return ok, nil
}

func (r *repo) UpdatePlayer(ctx context.Context, params *room.UpdatePlayerParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.lookup(params.RoomId)
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	e.room.Movie = params.Movie
	e.room.Position = params.Position
	e.room.IsPlaying = params.IsPlaying
	e.expiresAt = r.deadline()

	return nil
}

func (r *repo) DeleteRoom(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[roomId]
	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	r.remove(roomId, e)

	return nil
}

func (r *repo) GetRoomIdsByHost(ctx context.Context, hostId string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "host_id", hostId)
	r.mu.Lock()
	defer r.mu.Unlock()

	roomId, ok := r.hosts[hostId]
	if !ok {
		return nil, nil
	}

	if _, live := r.lookup(roomId); !live {
		return nil, nil
	}

	return []string{roomId}, nil
}
