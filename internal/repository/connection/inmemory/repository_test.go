package inmemory

import (
	"log/slog"
	"testing"

	"github.com/sharetube/watchparty/internal/repository/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) Send(any) error { return nil }

func TestAddAndGet(t *testing.T) {
	r := NewRepo(slog.Default())

	require.NoError(t, r.Add("a", nopConn{}))
	assert.ErrorIs(t, r.Add("a", nopConn{}), connection.ErrAlreadyExists)

	conn, err := r.GetConn("a")
	require.NoError(t, err)
	assert.Equal(t, nopConn{}, conn)

	_, err = r.GetConn("b")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestMembership(t *testing.T) {
	r := NewRepo(slog.Default())
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Add(id, nopConn{}))
	}

	assert.ErrorIs(t, r.JoinRoom("x", "ROOM01"), connection.ErrNotFound)

	require.NoError(t, r.JoinRoom("b", "ROOM01"))
	require.NoError(t, r.JoinRoom("a", "ROOM01"))
	require.NoError(t, r.JoinRoom("a", "ROOM01"))
	require.NoError(t, r.JoinRoom("c", "ROOM02"))
	assert.ErrorIs(t, r.JoinRoom("c", "ROOM01"), connection.ErrAlreadyInRoom)

	assert.Equal(t, []string{"a", "b"}, r.GetMemberIds("ROOM01"))
	assert.Equal(t, []string{"ROOM01", "ROOM02"}, r.GetRoomIds())
	assert.True(t, r.IsMember("a", "ROOM01"))
	assert.False(t, r.IsMember("c", "ROOM01"))

	roomId, err := r.GetRoomId("c")
	require.NoError(t, err)
	assert.Equal(t, "ROOM02", roomId)

	roomId, err = r.LeaveRoom("c")
	require.NoError(t, err)
	assert.Equal(t, "ROOM02", roomId)
	assert.Equal(t, []string{"ROOM01"}, r.GetRoomIds())

	_, err = r.LeaveRoom("c")
	assert.ErrorIs(t, err, connection.ErrNotInRoom)
}

func TestRemoveDropsMembership(t *testing.T) {
	r := NewRepo(slog.Default())
	require.NoError(t, r.Add("a", nopConn{}))
	require.NoError(t, r.Add("b", nopConn{}))
	require.NoError(t, r.JoinRoom("a", "ROOM01"))
	require.NoError(t, r.JoinRoom("b", "ROOM01"))

	roomId, err := r.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, "ROOM01", roomId)
	assert.Equal(t, []string{"b"}, r.GetMemberIds("ROOM01"))

	_, err = r.Remove("a")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestClearRoom(t *testing.T) {
	r := NewRepo(slog.Default())
	require.NoError(t, r.Add("a", nopConn{}))
	require.NoError(t, r.Add("b", nopConn{}))
	require.NoError(t, r.JoinRoom("a", "ROOM01"))
	require.NoError(t, r.JoinRoom("b", "ROOM01"))

	assert.Equal(t, []string{"a", "b"}, r.ClearRoom("ROOM01"))
	assert.Empty(t, r.GetMemberIds("ROOM01"))
	assert.Empty(t, r.GetRoomIds())

	_, err := r.GetRoomId("a")
	assert.ErrorIs(t, err, connection.ErrNotInRoom)
	require.NoError(t, r.JoinRoom("a", "ROOM02"))
}
