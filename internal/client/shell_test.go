package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sharetube/watchparty/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister []string

func (l staticLister) ListMovies(context.Context) ([]string, error) {
	return l, nil
}

func TestShellCommands(t *testing.T) {
	e := newEnv(RoleHost)
	e.r.HandleRoomCreated("ABC123")
	out := &bytes.Buffer{}
	sh := NewShell(e.r, e.media, staticLister{"a.mp4", "b.webm"}, out)
	ctx := context.Background()

	_, err := sh.Exec(ctx, "movies")
	require.NoError(t, err)
	assert.Equal(t, "a.mp4\nb.webm\n", out.String())

	_, err = sh.Exec(ctx, "select a.mp4")
	require.NoError(t, err)
	_, err = sh.Exec(ctx, "  seek 12.5 ")
	require.NoError(t, err)
	_, err = sh.Exec(ctx, "say hello there")
	require.NoError(t, err)

	assert.Equal(t, []string{protocol.TypeSelectMovie, protocol.TypeSeek, protocol.TypeChat}, e.emitter.types())
	assert.Equal(t, emitted{protocol.TypeChat, protocol.ChatInput{RoomId: "ABC123", Name: "Alice", Text: "hello there"}}, e.emitter.last())

	out.Reset()
	_, err = sh.Exec(ctx, "status")
	require.NoError(t, err)
	assert.Equal(t, "host room=ABC123 movie=a.mp4 paused at 12.5s\n", out.String())

	_, err = sh.Exec(ctx, "seek nope")
	assert.ErrorIs(t, err, errUsage)
	_, err = sh.Exec(ctx, "select")
	assert.ErrorIs(t, err, errUsage)
	_, err = sh.Exec(ctx, "dance")
	assert.Error(t, err)

	quit, err := sh.Exec(ctx, "quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestShellRun(t *testing.T) {
	e := newEnv(RoleGuest)
	out := &bytes.Buffer{}
	sh := NewShell(e.r, e.media, staticLister{}, out)

	err := sh.Run(context.Background(), strings.NewReader("say hi\n\nexit\nsay never\n"))
	require.NoError(t, err)
	assert.Equal(t, "error: not in a room yet\n", out.String())
	assert.Empty(t, e.emitter.types())
}

func TestHTTPMovieLister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/movies" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["movie.mp4","trailer.webm"]`))
	}))
	defer srv.Close()

	movies, err := HTTPMovieLister{Server: srv.URL}.ListMovies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"movie.mp4", "trailer.webm"}, movies)

	_, err = HTTPMovieLister{Server: srv.URL + "/nope"}.ListMovies(context.Background())
	assert.Error(t, err)
}
