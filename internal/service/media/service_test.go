package media

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/movies/nested", 0o755))
	for name, body := range map[string]string{
		"/movies/b.webm":       "webm",
		"/movies/a.MP4":        "mp4 data",
		"/movies/c.ogg":        "ogg",
		"/movies/notes.txt":    "txt",
		"/movies/nested/d.mp4": "nested",
		"/secret.mp4":          "outside",
	} {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(body), 0o644))
	}

	return NewService(fsys, "/movies", slog.Default())
}

func TestListMovies(t *testing.T) {
	s := newTestService(t)

	movies, err := s.ListMovies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.MP4", "b.webm", "c.ogg"}, movies)
}

func TestListMoviesMissingDir(t *testing.T) {
	s := NewService(afero.NewMemMapFs(), "/nope", slog.Default())

	movies, err := s.ListMovies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestOpenMovie(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	movie, err := s.OpenMovie(ctx, "a.MP4")
	require.NoError(t, err)
	defer movie.Content.Close()
	assert.Equal(t, "video/mp4", movie.ContentType)
	assert.EqualValues(t, 8, movie.Size)
	body, err := io.ReadAll(movie.Content)
	require.NoError(t, err)
	assert.Equal(t, "mp4 data", string(body))

	movie, err = s.OpenMovie(ctx, "b.webm")
	require.NoError(t, err)
	movie.Content.Close()
	assert.Equal(t, "video/webm", movie.ContentType)

	movie, err = s.OpenMovie(ctx, "notes.txt")
	require.NoError(t, err)
	movie.Content.Close()
	assert.Equal(t, defaultContentType, movie.ContentType)
}

func TestOpenMovieStaysInDirectory(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"../secret.mp4", "..", "", "nested", "missing.mp4", "..\\secret.mp4"} {
		_, err := s.OpenMovie(ctx, name)
		assert.ErrorIs(t, err, ErrMovieNotFound, name)
	}

	movie, err := s.OpenMovie(ctx, "nested/d.mp4")
	assert.ErrorIs(t, err, ErrMovieNotFound)
	assert.Nil(t, movie.Content)
}
