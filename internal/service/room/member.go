package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
)

func (s service) ConnectMember(ctx context.Context, connId string, conn connection.Conn) error {
	if err := s.connRepo.Add(connId, conn); err != nil {
		return fmt.Errorf("failed to add conn: %w", err)
	}

	s.logger.DebugContext(ctx, "member connected", "conn_id", connId)
	return nil
}

type DisconnectMemberResponse struct {
	// ClosedRooms are the rooms the member hosted, with the conns left in them.
	ClosedRooms []ClosedRoom
}

func (s service) DisconnectMember(ctx context.Context, connId string) (DisconnectMemberResponse, error) {
	if _, err := s.connRepo.Remove(connId); err != nil {
		return DisconnectMemberResponse{}, fmt.Errorf("failed to remove conn: %w", err)
	}

	roomIds, err := s.roomRepo.GetRoomIdsByHost(ctx, connId)
	if err != nil {
		return DisconnectMemberResponse{}, fmt.Errorf("failed to get hosted rooms: %w", err)
	}

	closed := make([]ClosedRoom, 0, len(roomIds))
	for _, roomId := range roomIds {
		memberIds := s.connRepo.ClearRoom(roomId)
		if err := s.roomRepo.DeleteRoom(ctx, roomId); err != nil && !errors.Is(err, room.ErrRoomNotFound) {
			return DisconnectMemberResponse{}, fmt.Errorf("failed to delete room: %w", err)
		}

		s.logger.InfoContext(ctx, "host left", "room_id", roomId, "members", len(memberIds))
		closed = append(closed, ClosedRoom{
			RoomId: roomId,
			Conns:  s.getConns(ctx, memberIds, connId),
		})
	}

	return DisconnectMemberResponse{
		ClosedRooms: closed,
	}, nil
}

type JoinRoomParams struct {
	SenderId string
	RoomId   string
}

type JoinRoomResponse struct {
	RoomId string
	// Movie is nil until the host selects one.
	Movie *string
	// HostConn is nil when the host itself joins.
	HostConn connection.Conn
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	roomId := domain.NormalizeRoomId(params.RoomId)
	rm, err := s.getRoom(ctx, roomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if err := s.leaveExpiredRoom(ctx, params.SenderId); err != nil {
		return JoinRoomResponse{}, err
	}

	if err := s.connRepo.JoinRoom(params.SenderId, roomId); err != nil {
		if errors.Is(err, connection.ErrAlreadyInRoom) {
			return JoinRoomResponse{}, ErrAlreadyInRoom
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to join room: %w", err)
	}

	var movie *string
	if player := playerOf(rm); player.HasMovie() {
		movie = &player.Movie
	}

	var hostConn connection.Conn
	if rm.HostId != params.SenderId {
		hostConn, err = s.connRepo.GetConn(rm.HostId)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to get host conn", "host_id", rm.HostId, "error", err)
		}
	}

	return JoinRoomResponse{
		RoomId:   roomId,
		Movie:    movie,
		HostConn: hostConn,
	}, nil
}

type ChatParams struct {
	SenderId string
	RoomId   string
	Name     string
	Text     string
}

type ChatResponse struct {
	Name  string
	Text  string
	Conns []connection.Conn
}

func (s service) Chat(ctx context.Context, params *ChatParams) (ChatResponse, error) {
	roomId := domain.NormalizeRoomId(params.RoomId)
	if _, err := s.getRoom(ctx, roomId); err != nil {
		return ChatResponse{}, err
	}

	if !s.connRepo.IsMember(params.SenderId, roomId) {
		return ChatResponse{}, ErrNotInRoom
	}

	text := s.sanitize(params.Text, maxTextLength)
	if text == "" {
		return ChatResponse{}, ErrEmptyMessage
	}

	name := s.sanitize(params.Name, maxNameLength)
	if name == "" {
		name = defaultName
	}

	return ChatResponse{
		Name:  name,
		Text:  text,
		Conns: s.getConnsByRoomId(ctx, roomId, params.SenderId),
	}, nil
}
