package inmemory

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/sharetube/watchparty/internal/repository/connection"
	"golang.org/x/exp/maps"
)

type repo struct {
	conns   map[string]connection.Conn
	roomOf  map[string]string
	members map[string]map[string]struct{}
	logger  *slog.Logger
	mu      sync.RWMutex
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		conns:   make(map[string]connection.Conn),
		roomOf:  make(map[string]string),
		members: make(map[string]map[string]struct{}),
		logger:  logger,
	}
}

func (r *repo) Add(connId string, conn connection.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("add connection", "conn_id", connId)
	if _, ok := r.conns[connId]; ok {
		return connection.ErrAlreadyExists
	}

	r.conns[connId] = conn
	return nil
}

// Remove forgets the connection and drops its room membership.
// It returns the id of the room it was in, if any.
func (r *repo) Remove(connId string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("remove connection", "conn_id", connId)
	if _, ok := r.conns[connId]; !ok {
		return "", connection.ErrNotFound
	}

	delete(r.conns, connId)
	roomId := r.roomOf[connId]
	r.leave(connId)

	return roomId, nil
}

func (r *repo) GetConn(connId string) (connection.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) JoinRoom(connId, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("join room", "conn_id", connId, "room_id", roomId)
	if _, ok := r.conns[connId]; !ok {
		return connection.ErrNotFound
	}

	if current, ok := r.roomOf[connId]; ok {
		if current == roomId {
			return nil
		}
		return connection.ErrAlreadyInRoom
	}

	r.roomOf[connId] = roomId
	if r.members[roomId] == nil {
		r.members[roomId] = make(map[string]struct{})
	}
	r.members[roomId][connId] = struct{}{}

	return nil
}

func (r *repo) LeaveRoom(connId string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomId, ok := r.roomOf[connId]
	if !ok {
		return "", connection.ErrNotInRoom
	}

	r.leave(connId)
	return roomId, nil
}

func (r *repo) leave(connId string) {
	roomId, ok := r.roomOf[connId]
	if !ok {
		return
	}

	delete(r.roomOf, connId)
	delete(r.members[roomId], connId)
	if len(r.members[roomId]) == 0 {
		delete(r.members, roomId)
	}
}

func (r *repo) GetRoomId(connId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomId, ok := r.roomOf[connId]
	if !ok {
		return "", connection.ErrNotInRoom
	}

	return roomId, nil
}

// GetMemberIds returns the sorted ids of connections in the room.
func (r *repo) GetMemberIds(roomId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := maps.Keys(r.members[roomId])
	slices.Sort(ids)
	return ids
}

func (r *repo) IsMember(connId, roomId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[roomId][connId]
	return ok
}

// GetRoomIds returns the sorted ids of rooms that have at least one member.
func (r *repo) GetRoomIds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := maps.Keys(r.members)
	slices.Sort(ids)
	return ids
}

// ClearRoom drops every membership of the room and returns the former member ids.
func (r *repo) ClearRoom(roomId string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug("clear room", "room_id", roomId)
	ids := maps.Keys(r.members[roomId])
	slices.Sort(ids)
	for _, id := range ids {
		delete(r.roomOf, id)
	}
	delete(r.members, roomId)

	return ids
}
