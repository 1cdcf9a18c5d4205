package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
)

type CreateRoomParams struct {
	SenderId string
	Name     string
}

type CreateRoomResponse struct {
	RoomId string
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	name := s.sanitize(params.Name, maxNameLength)
	if name == "" {
		name = defaultHostName
	}

	if err := s.leaveExpiredRoom(ctx, params.SenderId); err != nil {
		return CreateRoomResponse{}, err
	}

	for range s.createAttempts {
		roomId := s.generator.GenerateRandomString(domain.RoomIdLength)
		// members of an expired room keep its id until they are told it expired
		if len(s.connRepo.GetMemberIds(roomId)) > 0 {
			s.logger.DebugContext(ctx, "room id still has members", "room_id", roomId)
			continue
		}

		err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
			RoomId:    roomId,
			HostId:    params.SenderId,
			HostName:  name,
			CreatedAt: time.Now().Unix(),
		})
		if errors.Is(err, room.ErrRoomAlreadyExists) {
			s.logger.DebugContext(ctx, "room id collision", "room_id", roomId)
			continue
		}

		if errors.Is(err, room.ErrAlreadyHosting) {
			return CreateRoomResponse{}, ErrAlreadyHosting
		}

		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
		}

		if err := s.connRepo.JoinRoom(params.SenderId, roomId); err != nil {
			if err := s.roomRepo.DeleteRoom(ctx, roomId); err != nil {
				s.logger.ErrorContext(ctx, "failed to roll back room", "room_id", roomId, "error", err)
			}

			if errors.Is(err, connection.ErrAlreadyInRoom) {
				return CreateRoomResponse{}, ErrAlreadyInRoom
			}

			return CreateRoomResponse{}, fmt.Errorf("failed to join created room: %w", err)
		}

		s.logger.InfoContext(ctx, "room created", "room_id", roomId, "host_name", name)
		return CreateRoomResponse{
			RoomId: roomId,
		}, nil
	}

	return CreateRoomResponse{}, ErrRoomIdExhausted
}

// ExpireIdleRooms finds rooms whose registry entry is gone while members are still
// attached, detaches those members and returns them.
func (s service) ExpireIdleRooms(ctx context.Context) ([]ClosedRoom, error) {
	var closed []ClosedRoom
	for _, roomId := range s.connRepo.GetRoomIds() {
		exists, err := s.roomRepo.IsRoomExists(ctx, roomId)
		if err != nil {
			return closed, fmt.Errorf("failed to check if room exists: %w", err)
		}

		if exists {
			continue
		}

		memberIds := s.connRepo.ClearRoom(roomId)
		s.logger.InfoContext(ctx, "room expired", "room_id", roomId, "members", len(memberIds))
		closed = append(closed, ClosedRoom{
			RoomId: roomId,
			Conns:  s.getConns(ctx, memberIds, ""),
		})
	}

	return closed, nil
}
