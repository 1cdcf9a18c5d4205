// Package protocol holds the websocket message types exchanged between
// the watchparty server and its clients.
package protocol

import "encoding/json"

// Client to server.
const (
	TypeCreateRoom  = "create-room"
	TypeJoinRoom    = "join-room"
	TypeSelectMovie = "select-movie"
	TypePlay        = "play"
	TypePause       = "pause"
	TypeSeek        = "seek"
	TypeSyncRequest = "sync-request"
	TypeSyncState   = "sync-state"
	TypeChat        = "chat"
)

// Server to client. play, pause, seek, sync-request, sync-state and chat
// reuse the names above.
const (
	TypeRoomCreated   = "room-created"
	TypeRoomJoined    = "room-joined"
	TypeGuestJoined   = "guest-joined"
	TypeMovieSelected = "movie-selected"
	TypeHostLeft      = "host-left"
	TypeRoomExpired   = "room-expired"
	TypeError         = "error"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage encodes payload into an envelope of the given type.
func NewMessage(messageType string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Type: messageType, Payload: raw}, nil
}

type CreateRoomInput struct {
	Name string `json:"name" validate:"max=32"`
}

type JoinRoomInput struct {
	RoomId string `json:"roomId" validate:"required,len=6,alphanum"`
}

type SelectMovieInput struct {
	RoomId string `json:"roomId" validate:"required,len=6,alphanum"`
	File   string `json:"file" validate:"required,max=255"`
}

// PlaybackInput is the payload of play, pause and seek.
type PlaybackInput struct {
	RoomId string  `json:"roomId" validate:"required,len=6,alphanum"`
	Time   float64 `json:"time" validate:"gte=0"`
}

type SyncRequestInput struct {
	RoomId string `json:"roomId" validate:"required,len=6,alphanum"`
}

type SyncStateInput struct {
	RoomId  string  `json:"roomId" validate:"required,len=6,alphanum"`
	GuestId string  `json:"guestId" validate:"required,uuid"`
	Time    float64 `json:"time" validate:"gte=0"`
	Playing bool    `json:"playing"`
	Movie   *string `json:"movie,omitempty" validate:"omitempty,max=255"`
}

type ChatInput struct {
	RoomId string `json:"roomId" validate:"required,len=6,alphanum"`
	Name   string `json:"name" validate:"max=32"`
	Text   string `json:"text" validate:"required,max=500"`
}

type RoomCreatedOutput struct {
	RoomId string `json:"roomId"`
}

type RoomJoinedOutput struct {
	RoomId string  `json:"roomId"`
	Movie  *string `json:"movie"`
}

type GuestJoinedOutput struct {
	GuestId string `json:"guestId"`
	RoomId  string `json:"roomId"`
}

type MovieSelectedOutput struct {
	File string `json:"file"`
}

// PlaybackOutput is the payload of relayed play, pause and seek.
type PlaybackOutput struct {
	Time float64 `json:"time"`
}

type SyncRequestOutput struct {
	GuestId string `json:"guestId"`
	RoomId  string `json:"roomId"`
}

type SyncStateOutput struct {
	Time    float64 `json:"time"`
	Playing bool    `json:"playing"`
	Movie   *string `json:"movie,omitempty"`
}

type ChatOutput struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type HostLeftOutput struct{}

type RoomExpiredOutput struct {
	RoomId string `json:"roomId"`
}

type ErrorOutput struct {
	Message string `json:"message"`
}
