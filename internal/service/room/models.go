package room

import "github.com/sharetube/watchparty/internal/repository/connection"

const (
	maxNameLength   = 32
	maxTextLength   = 500
	defaultName     = "Guest"
	defaultHostName = "Host"
)

type Player struct {
	Movie     string  `json:"movie"`
	Time      float64 `json:"time"`
	IsPlaying bool    `json:"playing"`
}

// ClosedRoom is a room that no longer exists and the conns that were still in it.
type ClosedRoom struct {
	RoomId string
	Conns  []connection.Conn
}
