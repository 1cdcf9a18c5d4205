package client

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sharetube/watchparty/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMedia fires its events synchronously, the worst case for echo suppression.
type fakeMedia struct {
	movie    string
	t        float64
	playing  bool
	playErr  error
	listener MediaListener
}

func (m *fakeMedia) CurrentTime() float64 { return m.t }
func (m *fakeMedia) Paused() bool         { return !m.playing }
func (m *fakeMedia) Movie() string        { return m.movie }
func (m *fakeMedia) Load(file string) {
	m.movie = file
	m.t = 0
	m.playing = false
}

func (m *fakeMedia) SetCurrentTime(t float64) {
	m.t = t
	if m.listener != nil {
		m.listener.OnLocalSeeked()
	}
}

func (m *fakeMedia) Play() error {
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	if m.listener != nil {
		m.listener.OnLocalPlay()
	}
	return nil
}

func (m *fakeMedia) Pause() {
	m.playing = false
	if m.listener != nil {
		m.listener.OnLocalPause()
	}
}

type emitted struct {
	messageType string
	payload     any
}

type fakeEmitter struct {
	mu   sync.Mutex
	sent []emitted
}

func (e *fakeEmitter) Emit(messageType string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, emitted{messageType, payload})
	return nil
}

func (e *fakeEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := make([]string, 0, len(e.sent))
	for _, s := range e.sent {
		res = append(res, s.messageType)
	}
	return res
}

func (e *fakeEmitter) last() emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent[len(e.sent)-1]
}

func (e *fakeEmitter) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = nil
}

type chatLine struct{ name, text string }

type fakeView struct {
	roomId string
	status Status
	chat   []chatLine
}

func (v *fakeView) SetRoom(roomId string)     { v.roomId = roomId }
func (v *fakeView) SetStatus(status Status)   { v.status = status }
func (v *fakeView) AddChat(name, text string) { v.chat = append(v.chat, chatLine{name, text}) }

// fakeScheduler collects timers so tests decide when they fire.
type fakeScheduler struct {
	timers []func()
}

func (s *fakeScheduler) afterFunc(_ time.Duration, f func()) {
	s.timers = append(s.timers, f)
}

func (s *fakeScheduler) fire(i int) {
	s.timers[i]()
}

type env struct {
	r       *Reconciler
	media   *fakeMedia
	emitter *fakeEmitter
	view    *fakeView
	sched   *fakeScheduler
}

func newEnv(role Role) *env {
	e := &env{
		media:   &fakeMedia{},
		emitter: &fakeEmitter{},
		view:    &fakeView{},
		sched:   &fakeScheduler{},
	}
	e.r = NewReconciler(Config{
		Role:      role,
		Name:      "Alice",
		RoomId:    "abc123",
		AfterFunc: e.sched.afterFunc,
	}, e.media, e.emitter, e.view, slog.Default())
	e.media.listener = e.r

	return e
}

func TestStartMessage(t *testing.T) {
	host := newEnv(RoleHost)
	require.NoError(t, host.r.Start())
	assert.Equal(t, emitted{protocol.TypeCreateRoom, protocol.CreateRoomInput{Name: "Alice"}}, host.emitter.last())

	guest := newEnv(RoleGuest)
	require.NoError(t, guest.r.Start())
	assert.Equal(t, emitted{protocol.TypeJoinRoom, protocol.JoinRoomInput{RoomId: "ABC123"}}, guest.emitter.last())
	assert.Equal(t, StatusConnecting, guest.view.status)
}

func TestHostRemoteChangeIsNotEchoed(t *testing.T) {
	e := newEnv(RoleHost)
	e.r.HandleRoomCreated("ABC123")
	e.media.Load("movie.mp4")
	e.emitter.reset()

	e.r.HandlePlay(12)
	assert.Empty(t, e.emitter.types(), "echo of a remote play must be suppressed")
	assert.True(t, e.r.Applying())
	assert.Equal(t, 12.0, e.media.t)
	assert.True(t, e.media.playing)

	e.r.OnLocalSeeked()
	assert.Empty(t, e.emitter.types(), "events inside the window are suppressed")

	require.Len(t, e.sched.timers, 1)
	e.sched.fire(0)
	assert.False(t, e.r.Applying())

	e.media.t = 20
	e.r.OnLocalPause()
	assert.Equal(t, emitted{protocol.TypePause, protocol.PlaybackInput{RoomId: "ABC123", Time: 20}}, e.emitter.last())
}

func TestOverlappingSuppressionWindows(t *testing.T) {
	e := newEnv(RoleHost)
	e.r.HandleRoomCreated("ABC123")
	e.media.Load("movie.mp4")
	e.emitter.reset()

	e.r.HandlePlay(1)
	e.r.HandleSeek(5)
	require.Len(t, e.sched.timers, 2)

	e.sched.fire(0)
	assert.True(t, e.r.Applying(), "a stale timer must not end a newer window")
	e.r.OnLocalPlay()
	assert.Empty(t, e.emitter.types())

	e.sched.fire(1)
	assert.False(t, e.r.Applying())
	e.r.OnLocalPlay()
	assert.Equal(t, []string{protocol.TypePlay}, e.emitter.types())
}

func TestHostLocalEvents(t *testing.T) {
	e := newEnv(RoleHost)
	e.r.OnLocalPlay()
	assert.Empty(t, e.emitter.types(), "nothing is sent before the room exists")

	e.r.HandleRoomCreated("ABC123")
	assert.Equal(t, StatusHosting, e.view.status)
	assert.Equal(t, "ABC123", e.view.roomId)

	require.NoError(t, e.r.SelectMovie("movie.mp4"))
	assert.Equal(t, "movie.mp4", e.media.movie)

	require.NoError(t, e.r.TogglePlayback())
	require.NoError(t, e.r.Seek(30))
	require.NoError(t, e.r.TogglePlayback())

	assert.Equal(t, []string{
		protocol.TypeSelectMovie,
		protocol.TypePlay,
		protocol.TypeSeek,
		protocol.TypePause,
	}, e.emitter.types())
	assert.Equal(t, emitted{protocol.TypePause, protocol.PlaybackInput{RoomId: "ABC123", Time: 30}}, e.emitter.last())
}

func TestGuestNeverTransmitsPlayback(t *testing.T) {
	e := newEnv(RoleGuest)
	movie := "movie.mp4"
	require.NoError(t, e.r.HandleRoomJoined("ABC123", &movie))
	assert.Equal(t, "movie.mp4", e.media.movie)
	assert.Equal(t, StatusSyncing, e.view.status)
	assert.Equal(t, emitted{protocol.TypeSyncRequest, protocol.SyncRequestInput{RoomId: "ABC123"}}, e.emitter.last())
	e.emitter.reset()

	e.r.OnLocalPlay()
	e.r.OnLocalPause()
	e.r.OnLocalSeeked()
	e.r.HandleSyncState(42.5, true, nil)
	e.sched.fire(0)
	e.r.OnLocalSeeked()
	assert.Empty(t, e.emitter.types())
	assert.Equal(t, StatusSynced, e.view.status)

	assert.ErrorIs(t, e.r.SelectMovie("x.mp4"), ErrHostOnly)
	assert.ErrorIs(t, e.r.Seek(3), ErrHostOnly)

	// the guest control button asks for a re-sync
	require.NoError(t, e.r.TogglePlayback())
	assert.Equal(t, []string{protocol.TypeSyncRequest}, e.emitter.types())
}

func TestGuestAppliesRemoteState(t *testing.T) {
	e := newEnv(RoleGuest)
	require.NoError(t, e.r.HandleRoomJoined("ABC123", nil))
	assert.Empty(t, e.media.movie)

	e.r.HandleMovieSelected("movie.mp4")
	assert.Equal(t, "movie.mp4", e.media.movie)

	e.r.HandlePlay(3)
	assert.True(t, e.media.playing)
	assert.Equal(t, 3.0, e.media.t)
	assert.Equal(t, StatusSynced, e.view.status)

	e.r.HandlePause(7)
	assert.False(t, e.media.playing)
	assert.Equal(t, 7.0, e.media.t)
	assert.Equal(t, StatusPaused, e.view.status)

	other := "other.webm"
	e.r.HandleSyncState(42.5, false, &other)
	assert.Equal(t, "other.webm", e.media.movie)
	assert.Equal(t, 42.5, e.media.t)
	assert.False(t, e.media.playing)
}

func TestPlayRejectionIsSwallowed(t *testing.T) {
	e := newEnv(RoleGuest)
	require.NoError(t, e.r.HandleRoomJoined("ABC123", nil))
	e.media.playErr = errors.New("autoplay blocked")

	e.r.HandleSyncState(10, true, nil)
	assert.Equal(t, StatusSynced, e.view.status)
	assert.Equal(t, 10.0, e.media.t)
}

func TestHostAnswersSyncRequest(t *testing.T) {
	e := newEnv(RoleHost)
	e.r.HandleRoomCreated("ABC123")
	e.media.movie = "movie.mp4"
	e.media.t = 42.5
	e.media.playing = true
	e.emitter.reset()

	require.NoError(t, e.r.HandleSyncRequest("guest-1", "ABC123"))
	movie := "movie.mp4"
	assert.Equal(t, emitted{protocol.TypeSyncState, protocol.SyncStateInput{
		RoomId:  "ABC123",
		GuestId: "guest-1",
		Time:    42.5,
		Playing: true,
		Movie:   &movie,
	}}, e.emitter.last())
	assert.False(t, e.r.Applying(), "answering a sync request does not suppress local events")
	assert.Empty(t, e.sched.timers)

	e.r.HandleGuestJoined()
	assert.Equal(t, []chatLine{{"System", "A guest joined the room"}}, e.view.chat)
}

func TestHostLeft(t *testing.T) {
	e := newEnv(RoleGuest)
	require.NoError(t, e.r.HandleRoomJoined("ABC123", nil))
	e.media.movie = "movie.mp4"
	e.r.HandlePlay(5)
	e.sched.fire(0)

	e.r.HandleHostLeft()
	assert.False(t, e.media.playing)
	assert.Equal(t, StatusHostLeft, e.view.status)
}

func TestChat(t *testing.T) {
	e := newEnv(RoleGuest)
	assert.ErrorIs(t, e.r.SendChat("hi"), ErrNotInRoom)

	require.NoError(t, e.r.HandleRoomJoined("ABC123", nil))
	require.NoError(t, e.r.SendChat("hi"))
	assert.Equal(t, emitted{protocol.TypeChat, protocol.ChatInput{RoomId: "ABC123", Name: "Alice", Text: "hi"}}, e.emitter.last())

	e.r.HandleChat("Bob", "hello")
	assert.Equal(t, []chatLine{{"Alice", "hi"}, {"Bob", "hello"}}, e.view.chat)
}

func TestDispatch(t *testing.T) {
	e := newEnv(RoleGuest)

	msg, err := protocol.NewMessage(protocol.TypeRoomJoined, protocol.RoomJoinedOutput{RoomId: "ABC123"})
	require.NoError(t, err)
	require.NoError(t, Dispatch(e.r, msg))
	assert.Equal(t, "ABC123", e.r.RoomId())

	msg, err = protocol.NewMessage(protocol.TypeSeek, protocol.PlaybackOutput{Time: 9})
	require.NoError(t, err)
	require.NoError(t, Dispatch(e.r, msg))
	assert.Equal(t, 9.0, e.media.t)

	msg, err = protocol.NewMessage(protocol.TypeRoomExpired, protocol.RoomExpiredOutput{RoomId: "ABC123"})
	require.NoError(t, err)
	require.NoError(t, Dispatch(e.r, msg))
	assert.Equal(t, StatusHostLeft, e.view.status)

	msg, err = protocol.NewMessage(protocol.TypeError, protocol.ErrorOutput{Message: "room not found"})
	require.NoError(t, err)
	err = Dispatch(e.r, msg)
	assert.ErrorIs(t, err, ErrSessionTerminated)
	assert.Contains(t, err.Error(), "room not found")

	assert.Error(t, Dispatch(e.r, protocol.Message{Type: "bogus"}))
}
