package room

import (
	"context"
	"fmt"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
)

type UpdatePlayerParams struct {
	SenderId string
	RoomId   string
	Time     float64
}

type UpdatePlayerResponse struct {
	Player Player
	Conns  []connection.Conn
}

func (s service) Play(ctx context.Context, params *UpdatePlayerParams) (UpdatePlayerResponse, error) {
	return s.updatePlayer(ctx, params.SenderId, params.RoomId, domain.PlayerEvent{
		Kind: domain.EventPlay,
		Time: params.Time,
	})
}

func (s service) Pause(ctx context.Context, params *UpdatePlayerParams) (UpdatePlayerResponse, error) {
	return s.updatePlayer(ctx, params.SenderId, params.RoomId, domain.PlayerEvent{
		Kind: domain.EventPause,
		Time: params.Time,
	})
}

func (s service) Seek(ctx context.Context, params *UpdatePlayerParams) (UpdatePlayerResponse, error) {
	return s.updatePlayer(ctx, params.SenderId, params.RoomId, domain.PlayerEvent{
		Kind: domain.EventSeek,
		Time: params.Time,
	})
}

type SelectMovieParams struct {
	SenderId string
	RoomId   string
	File     string
}

func (s service) SelectMovie(ctx context.Context, params *SelectMovieParams) (UpdatePlayerResponse, error) {
	return s.updatePlayer(ctx, params.SenderId, params.RoomId, domain.PlayerEvent{
		Kind: domain.EventSelectMovie,
		File: params.File,
	})
}

// updatePlayer applies a host event to the room state and returns the conns it must be relayed to.
func (s service) updatePlayer(ctx context.Context, senderId, roomId string, event domain.PlayerEvent) (UpdatePlayerResponse, error) {
	roomId = domain.NormalizeRoomId(roomId)
	rm, err := s.getRoom(ctx, roomId)
	if err != nil {
		return UpdatePlayerResponse{}, err
	}

	if rm.HostId != senderId {
		return UpdatePlayerResponse{}, ErrPermissionDenied
	}

	player := playerOf(rm).Apply(event)

	if err := s.roomRepo.UpdatePlayer(ctx, &room.UpdatePlayerParams{
		RoomId:    roomId,
		Movie:     player.Movie,
		Position:  player.Position,
		IsPlaying: player.IsPlaying,
	}); err != nil {
		return UpdatePlayerResponse{}, fmt.Errorf("failed to update player: %w", err)
	}

	return UpdatePlayerResponse{
		Player: Player{
			Movie:     player.Movie,
			Time:      player.Position,
			IsPlaying: player.IsPlaying,
		},
		Conns: s.getConnsByRoomId(ctx, roomId, senderId),
	}, nil
}

type SyncRequestParams struct {
	SenderId string
	RoomId   string
}

type SyncRequestResponse struct {
	RoomId   string
	HostConn connection.Conn
}

// SyncRequest routes a guest's request for the current playback state to the host.
func (s service) SyncRequest(ctx context.Context, params *SyncRequestParams) (SyncRequestResponse, error) {
	roomId := domain.NormalizeRoomId(params.RoomId)
	rm, err := s.getRoom(ctx, roomId)
	if err != nil {
		return SyncRequestResponse{}, err
	}

	if rm.HostId == params.SenderId {
		return SyncRequestResponse{}, ErrPermissionDenied
	}

	if !s.connRepo.IsMember(params.SenderId, roomId) {
		return SyncRequestResponse{}, ErrNotInRoom
	}

	hostConn, err := s.connRepo.GetConn(rm.HostId)
	if err != nil {
		return SyncRequestResponse{}, fmt.Errorf("failed to get host conn: %w", err)
	}

	return SyncRequestResponse{
		RoomId:   roomId,
		HostConn: hostConn,
	}, nil
}

type SyncStateParams struct {
	SenderId string
	RoomId   string
	GuestId  string
	Time     float64
	Playing  bool
	Movie    *string
}

type SyncStateResponse struct {
	GuestConn connection.Conn
}

// SyncState routes the host's answer to exactly the guest that asked.
func (s service) SyncState(ctx context.Context, params *SyncStateParams) (SyncStateResponse, error) {
	roomId := domain.NormalizeRoomId(params.RoomId)
	rm, err := s.getRoom(ctx, roomId)
	if err != nil {
		return SyncStateResponse{}, err
	}

	if rm.HostId != params.SenderId {
		return SyncStateResponse{}, ErrPermissionDenied
	}

	if params.GuestId == params.SenderId || !s.connRepo.IsMember(params.GuestId, roomId) {
		return SyncStateResponse{}, ErrNotInRoom
	}

	guestConn, err := s.connRepo.GetConn(params.GuestId)
	if err != nil {
		return SyncStateResponse{}, fmt.Errorf("failed to get guest conn: %w", err)
	}

	return SyncStateResponse{
		GuestConn: guestConn,
	}, nil
}
