package domain

// EventKind names a host playback event.
type EventKind string

const (
	EventSelectMovie EventKind = "select-movie"
	EventPlay        EventKind = "play"
	EventPause       EventKind = "pause"
	EventSeek        EventKind = "seek"
)

// PlayerEvent is a host-originated change of a room's playback state.
type PlayerEvent struct {
	Kind EventKind
	Time float64
	File string
}

// Player is the authoritative playback state of a room.
// An empty Movie means no movie has been selected yet.
type Player struct {
	Movie     string  `json:"movie"`
	Position  float64 `json:"position"`
	IsPlaying bool    `json:"is_playing"`
}

// Apply returns the state after e. Events are not ordered or versioned:
// whatever is applied last wins.
func (p Player) Apply(e PlayerEvent) Player {
	switch e.Kind {
	case EventSelectMovie:
		p.Movie = e.File
		p.Position = 0
		p.IsPlaying = false
	case EventPlay:
		p.IsPlaying = true
		p.Position = e.Time
	case EventPause:
		p.IsPlaying = false
		p.Position = e.Time
	case EventSeek:
		p.Position = e.Time
	}

	return p
}

func (p Player) HasMovie() bool {
	return p.Movie != ""
}
