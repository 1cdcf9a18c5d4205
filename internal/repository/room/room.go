package room

type Room struct {
	Id        string
	HostId    string  `redis:"host_id"`
	HostName  string  `redis:"host_name"`
	Movie     string  `redis:"movie"`
	Position  float64 `redis:"position"`
	IsPlaying bool    `redis:"is_playing"`
	CreatedAt int64   `redis:"created_at"`
}

type CreateRoomParams struct {
	RoomId    string
	HostId    string
	HostName  string
	CreatedAt int64
}

type UpdatePlayerParams struct {
	RoomId    string
	Movie     string
	Position  float64
	IsPlaying bool
}
