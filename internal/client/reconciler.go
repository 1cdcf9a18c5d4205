package client

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/watchparty/internal/domain"
	"github.com/sharetube/watchparty/internal/protocol"
)

var (
	ErrNotInRoom = errors.New("not in a room yet")
	ErrHostOnly  = errors.New("only the host controls playback")
)

type Role int

const (
	RoleGuest Role = iota
	RoleHost
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}

	return "guest"
}

type Status string

const (
	StatusConnecting Status = "connecting"
	StatusHosting    Status = "hosting"
	StatusSyncing    Status = "syncing"
	StatusSynced     Status = "synced"
	StatusPaused     Status = "paused"
	StatusHostLeft   Status = "host left"
)

const DefaultDebounce = 300 * time.Millisecond

// MediaElement is the local player the reconciler drives.
type MediaElement interface {
	CurrentTime() float64
	Paused() bool
	Movie() string
	Load(file string)
	SetCurrentTime(t float64)
	Play() error
	Pause()
}

type Emitter interface {
	Emit(messageType string, payload any) error
}

// View renders room state to the user.
type View interface {
	SetRoom(roomId string)
	SetStatus(status Status)
	AddChat(name, text string)
}

type Config struct {
	Role Role
	Name string
	// RoomId is the room a guest joins.
	RoomId string
	// Debounce is how long local media events are ignored after a remote change.
	Debounce time.Duration
	// AfterFunc schedules f after d. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
}

// Reconciler applies remote playback state to the local media element and reports
// local changes, without echoing remote changes back to the room.
type Reconciler struct {
	role      Role
	name      string
	joinId    string
	debounce  time.Duration
	afterFunc func(time.Duration, func())

	media   MediaElement
	emitter Emitter
	view    View
	logger  *slog.Logger

	mu         sync.Mutex
	roomId     string
	applying   bool
	generation uint64
}

func NewReconciler(cfg Config, media MediaElement, emitter Emitter, view View, logger *slog.Logger) *Reconciler {
	r := &Reconciler{
		role:      cfg.Role,
		name:      cfg.Name,
		joinId:    domain.NormalizeRoomId(cfg.RoomId),
		debounce:  cfg.Debounce,
		afterFunc: cfg.AfterFunc,
		media:     media,
		emitter:   emitter,
		view:      view,
		logger:    logger,
	}
	if r.name == "" {
		r.name = "Guest"
		if r.role == RoleHost {
			r.name = "Host"
		}
	}
	if r.debounce <= 0 {
		r.debounce = DefaultDebounce
	}
	if r.afterFunc == nil {
		r.afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}

	return r
}

func (r *Reconciler) Role() Role {
	return r.role
}

func (r *Reconciler) RoomId() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.roomId
}

// Applying reports whether local media events are currently suppressed.
func (r *Reconciler) Applying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.applying
}

// Start sends the first message of the session: create-room for a host, join-room for a guest.
func (r *Reconciler) Start() error {
	r.view.SetStatus(StatusConnecting)
	if r.role == RoleHost {
		return r.emitter.Emit(protocol.TypeCreateRoom, protocol.CreateRoomInput{Name: r.name})
	}

	return r.emitter.Emit(protocol.TypeJoinRoom, protocol.JoinRoomInput{RoomId: r.joinId})
}

// applyRemote runs fn with local event reporting suppressed until the debounce
// interval after the latest remote change has passed.
func (r *Reconciler) applyRemote(fn func()) {
	r.mu.Lock()
	r.applying = true
	r.generation++
	gen := r.generation
	r.mu.Unlock()

	fn()

	r.afterFunc(r.debounce, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.generation == gen {
			r.applying = false
		}
	})
}

func (r *Reconciler) play() {
	// autoplay may be refused, the user can start playback manually
	if err := r.media.Play(); err != nil {
		r.logger.Debug("play rejected", "error", err)
	}
}

func (r *Reconciler) setRoom(roomId string) {
	r.mu.Lock()
	r.roomId = roomId
	r.mu.Unlock()
	r.view.SetRoom(roomId)
}

func (r *Reconciler) HandleRoomCreated(roomId string) {
	r.setRoom(roomId)
	r.view.SetStatus(StatusHosting)
}

func (r *Reconciler) HandleRoomJoined(roomId string, movie *string) error {
	r.setRoom(roomId)
	r.view.SetStatus(StatusSyncing)
	if movie != nil && *movie != "" {
		r.media.Load(*movie)
	}

	return r.emitter.Emit(protocol.TypeSyncRequest, protocol.SyncRequestInput{RoomId: roomId})
}

func (r *Reconciler) HandleMovieSelected(file string) {
	r.media.Load(file)
}

func (r *Reconciler) HandlePlay(t float64) {
	r.applyRemote(func() {
		r.media.SetCurrentTime(t)
		r.play()
		r.view.SetStatus(StatusSynced)
	})
}

func (r *Reconciler) HandlePause(t float64) {
	r.applyRemote(func() {
		r.media.SetCurrentTime(t)
		r.media.Pause()
		r.view.SetStatus(StatusPaused)
	})
}

func (r *Reconciler) HandleSeek(t float64) {
	r.applyRemote(func() {
		r.media.SetCurrentTime(t)
	})
}

func (r *Reconciler) HandleSyncState(t float64, playing bool, movie *string) {
	r.applyRemote(func() {
		if movie != nil && *movie != "" && *movie != r.media.Movie() {
			r.media.Load(*movie)
		}
		r.media.SetCurrentTime(t)
		if playing {
			r.play()
		} else {
			r.media.Pause()
		}
		r.view.SetStatus(StatusSynced)
	})
}

// HandleSyncRequest answers a guest with the host's current local state.
func (r *Reconciler) HandleSyncRequest(guestId, roomId string) error {
	if r.role != RoleHost {
		return nil
	}

	var movie *string
	if m := r.media.Movie(); m != "" {
		movie = &m
	}

	return r.emitter.Emit(protocol.TypeSyncState, protocol.SyncStateInput{
		RoomId:  roomId,
		GuestId: guestId,
		Time:    r.media.CurrentTime(),
		Playing: !r.media.Paused(),
		Movie:   movie,
	})
}

func (r *Reconciler) HandleGuestJoined() {
	r.view.AddChat("System", "A guest joined the room")
}

func (r *Reconciler) HandleChat(name, text string) {
	r.view.AddChat(name, text)
}

// HandleHostLeft stops playback; the room no longer exists.
func (r *Reconciler) HandleHostLeft() {
	r.applyRemote(func() {
		r.media.Pause()
		r.view.SetStatus(StatusHostLeft)
	})
}

func (r *Reconciler) OnLocalPlay() {
	r.emitLocal(protocol.TypePlay)
}

func (r *Reconciler) OnLocalPause() {
	r.emitLocal(protocol.TypePause)
}

func (r *Reconciler) OnLocalSeeked() {
	r.emitLocal(protocol.TypeSeek)
}

func (r *Reconciler) emitLocal(messageType string) {
	r.mu.Lock()
	suppressed := r.role != RoleHost || r.applying || r.roomId == ""
	roomId := r.roomId
	r.mu.Unlock()

	if suppressed {
		return
	}

	if err := r.emitter.Emit(messageType, protocol.PlaybackInput{
		RoomId: roomId,
		Time:   r.media.CurrentTime(),
	}); err != nil {
		r.logger.Warn("failed to emit local event", "type", messageType, "error", err)
	}
}

// SelectMovie loads file locally and announces it to the room. Host only.
func (r *Reconciler) SelectMovie(file string) error {
	roomId := r.RoomId()
	if roomId == "" {
		return ErrNotInRoom
	}

	if r.role != RoleHost {
		return ErrHostOnly
	}

	if err := r.emitter.Emit(protocol.TypeSelectMovie, protocol.SelectMovieInput{RoomId: roomId, File: file}); err != nil {
		return err
	}
	r.media.Load(file)

	return nil
}

// TogglePlayback plays or pauses for a host. A guest cannot control playback,
// so for a guest it requests a re-sync instead.
func (r *Reconciler) TogglePlayback() error {
	roomId := r.RoomId()
	if roomId == "" {
		return ErrNotInRoom
	}

	if r.role != RoleHost {
		return r.emitter.Emit(protocol.TypeSyncRequest, protocol.SyncRequestInput{RoomId: roomId})
	}

	if r.media.Paused() {
		r.play()
	} else {
		r.media.Pause()
	}

	return nil
}

// Seek moves the host's playhead. The media element reports the change.
func (r *Reconciler) Seek(t float64) error {
	if r.RoomId() == "" {
		return ErrNotInRoom
	}

	if r.role != RoleHost {
		return ErrHostOnly
	}

	r.media.SetCurrentTime(t)
	return nil
}

// SendChat posts text to the room and shows it locally, since the server
// does not echo chat to its sender.
func (r *Reconciler) SendChat(text string) error {
	roomId := r.RoomId()
	if roomId == "" {
		return ErrNotInRoom
	}

	if err := r.emitter.Emit(protocol.TypeChat, protocol.ChatInput{RoomId: roomId, Name: r.name, Text: text}); err != nil {
		return err
	}
	r.view.AddChat(r.name, text)

	return nil
}
