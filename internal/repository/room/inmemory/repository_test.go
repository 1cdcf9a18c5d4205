package inmemory

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestRepo(ttl time.Duration) (*repo, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	r := NewRepo(ttl, slog.Default())
	r.now = clock.now
	return r, clock
}

func TestCreateAndGetRoom(t *testing.T) {
	r, _ := newTestRepo(0)
	ctx := context.Background()

	require.NoError(t, r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "ABC123", HostId: "host", HostName: "Host"}))

	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.Id)
	assert.Equal(t, "host", got.HostId)
	assert.Equal(t, "Host", got.HostName)
	assert.Empty(t, got.Movie)
	assert.Zero(t, got.Position)
	assert.False(t, got.IsPlaying)

	err = r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "ABC123", HostId: "other"})
	assert.ErrorIs(t, err, room.ErrRoomAlreadyExists)

	_, err = r.GetRoom(ctx, "ZZZ999")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestOneHostedRoomPerConnection(t *testing.T) {
	r, _ := newTestRepo(0)
	ctx := context.Background()

	require.NoError(t, r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "AAAAAA", HostId: "host"}))
	err := r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "BBBBBB", HostId: "host"})
	assert.ErrorIs(t, err, room.ErrAlreadyHosting)

	ids, err := r.GetRoomIdsByHost(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAAAA"}, ids)

	require.NoError(t, r.DeleteRoom(ctx, "AAAAAA"))
	ids, err = r.GetRoomIdsByHost(ctx, "host")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// id reuse after deletion is allowed
	require.NoError(t, r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "AAAAAA", HostId: "host"}))
}

func TestUpdatePlayer(t *testing.T) {
	r, _ := newTestRepo(0)
	ctx := context.Background()

	err := r.UpdatePlayer(ctx, &room.UpdatePlayerParams{RoomId: "ABC123"})
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	require.NoError(t, r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "ABC123", HostId: "host"}))
	require.NoError(t, r.UpdatePlayer(ctx, &room.UpdatePlayerParams{
		RoomId:    "ABC123",
		Movie:     "movie.mp4",
		Position:  42.5,
		IsPlaying: true,
	}))

	got, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "movie.mp4", got.Movie)
	assert.Equal(t, 42.5, got.Position)
	assert.True(t, got.IsPlaying)

	assert.ErrorIs(t, r.DeleteRoom(ctx, "NOPE00"), room.ErrRoomNotFound)
}

func TestIdleExpiry(t *testing.T) {
	r, clock := newTestRepo(time.Hour)
	ctx := context.Background()

	require.NoError(t, r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "ABC123", HostId: "host"}))

	clock.t = clock.t.Add(50 * time.Minute)
	_, err := r.GetRoom(ctx, "ABC123")
	require.NoError(t, err, "access refreshes the deadline")

	clock.t = clock.t.Add(50 * time.Minute)
	exists, err := r.IsRoomExists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	// IsRoomExists does not refresh
	clock.t = clock.t.Add(11 * time.Minute)
	exists, err = r.IsRoomExists(ctx, "ABC123")
	require.NoError(t, err)
	assert.False(t, exists)

	ids, err := r.GetRoomIdsByHost(ctx, "host")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// host may create a new room once the old one expired
	require.NoError(t, r.CreateRoom(ctx, &room.CreateRoomParams{RoomId: "DEF456", HostId: "host"}))
}
