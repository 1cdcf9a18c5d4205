package room

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
)

// getRoom loads the room and refreshes its idle deadline.
func (s service) getRoom(ctx context.Context, roomId string) (room.Room, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return room.Room{}, ErrRoomNotFound
		}

		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return rm, nil
}

func playerOf(rm room.Room) domain.Player {
	return domain.Player{
		Movie:     rm.Movie,
		Position:  rm.Position,
		IsPlaying: rm.IsPlaying,
	}
}

// leaveExpiredRoom detaches connId from its room if that room has expired and
// the janitor has not swept it yet. The other members stay until the sweep.
func (s service) leaveExpiredRoom(ctx context.Context, connId string) error {
	roomId, err := s.connRepo.GetRoomId(connId)
	if err != nil {
		if errors.Is(err, connection.ErrNotInRoom) {
			return nil
		}

		return fmt.Errorf("failed to get room id: %w", err)
	}

	exists, err := s.roomRepo.IsRoomExists(ctx, roomId)
	if err != nil {
		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if exists {
		return nil
	}

	if _, err := s.connRepo.LeaveRoom(connId); err != nil {
		return fmt.Errorf("failed to leave expired room: %w", err)
	}

	s.logger.InfoContext(ctx, "left expired room", "conn_id", connId, "room_id", roomId)
	return nil
}

// getConnsByRoomId returns the conns of every member of the room except exceptId.
func (s service) getConnsByRoomId(ctx context.Context, roomId, exceptId string) []connection.Conn {
	return s.getConns(ctx, s.connRepo.GetMemberIds(roomId), exceptId)
}

func (s service) getConns(ctx context.Context, connIds []string, exceptId string) []connection.Conn {
	conns := make([]connection.Conn, 0, len(connIds))
	for _, connId := range connIds {
		if connId == exceptId {
			continue
		}

		conn, err := s.connRepo.GetConn(connId)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to get conn", "conn_id", connId, "error", err)
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

// sanitize reduces s to plain text of at most maxLen runes.
func (s service) sanitize(str string, maxLen int) string {
	str = s.policy.Sanitize(html.UnescapeString(str))
	str = strings.TrimSpace(html.UnescapeString(str))
	if utf8.RuneCountInString(str) > maxLen {
		str = string([]rune(str)[:maxLen])
	}

	return str
}
