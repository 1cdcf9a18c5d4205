package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/sharetube/watchparty/internal/service/media"
	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/eventloop"
	"github.com/sharetube/watchparty/pkg/validator"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

type iRoomService interface {
	ConnectMember(context.Context, string, connection.Conn) error
	DisconnectMember(context.Context, string) (room.DisconnectMemberResponse, error)
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	SelectMovie(context.Context, *room.SelectMovieParams) (room.UpdatePlayerResponse, error)
	Play(context.Context, *room.UpdatePlayerParams) (room.UpdatePlayerResponse, error)
	Pause(context.Context, *room.UpdatePlayerParams) (room.UpdatePlayerResponse, error)
	Seek(context.Context, *room.UpdatePlayerParams) (room.UpdatePlayerResponse, error)
	SyncRequest(context.Context, *room.SyncRequestParams) (room.SyncRequestResponse, error)
	SyncState(context.Context, *room.SyncStateParams) (room.SyncStateResponse, error)
	Chat(context.Context, *room.ChatParams) (room.ChatResponse, error)
	ExpireIdleRooms(context.Context) ([]room.ClosedRoom, error)
}

type iMediaService interface {
	ListMovies(context.Context) ([]string, error)
	OpenMovie(context.Context, string) (media.Movie, error)
}

type Config struct {
	// SendBuffer is the number of outbound messages queued per connection.
	SendBuffer int
	// StaticDir is served under / when not empty.
	StaticDir string
}

type controller struct {
	roomService  iRoomService
	mediaService iMediaService
	loop         *eventloop.Loop
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	wsRouter     *wsrouter.WSRouter
	logger       *slog.Logger
	sendBuffer   int
	staticDir    string
}

func NewController(roomService iRoomService, mediaService iMediaService, loop *eventloop.Loop, logger *slog.Logger, cfg Config) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService:  roomService,
		mediaService: mediaService,
		loop:         loop,
		validate:     validator.NewValidator(),
		logger:       logger,
		sendBuffer:   cfg.SendBuffer,
		staticDir:    cfg.StaticDir,
	}
	if c.sendBuffer <= 0 {
		c.sendBuffer = defaultSendBuffer
	}
	c.wsRouter = c.getWSRouter()

	return c
}
