package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/repository/room"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyHosting   = errors.New("already hosting a room")
	ErrAlreadyInRoom    = errors.New("already in a room")
	ErrNotInRoom        = errors.New("not in the room")
	ErrEmptyMessage     = errors.New("empty message")
	ErrRoomIdExhausted  = errors.New("failed to generate unique room id")
)

type iRoomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	IsRoomExists(context.Context, string) (bool, error)
	UpdatePlayer(context.Context, *room.UpdatePlayerParams) error
	DeleteRoom(context.Context, string) error
	GetRoomIdsByHost(context.Context, string) ([]string, error)
}

type iConnRepo interface {
	Add(string, connection.Conn) error
	Remove(string) (string, error)
	GetConn(string) (connection.Conn, error)
	JoinRoom(connId, roomId string) error
	LeaveRoom(string) (string, error)
	GetRoomId(string) (string, error)
	GetMemberIds(string) []string
	IsMember(connId, roomId string) bool
	GetRoomIds() []string
	ClearRoom(string) []string
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type service struct {
	roomRepo       iRoomRepo
	connRepo       iConnRepo
	generator      iGenerator
	policy         *bluemonday.Policy
	logger         *slog.Logger
	createAttempts int
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, generator iGenerator, logger *slog.Logger) *service {
	return &service{
		roomRepo:       roomRepo,
		connRepo:       connRepo,
		generator:      generator,
		policy:         bluemonday.StrictPolicy(),
		logger:         logger,
		createAttempts: 16,
	}
}
