package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var ErrMovieNotFound = errors.New("movie not found")

var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
}

const defaultContentType = "video/mp4"

type service struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// NewService serves movies stored directly in dir of fsys.
func NewService(fsys afero.Fs, dir string, logger *slog.Logger) *service {
	return &service{
		fs:     fsys,
		dir:    dir,
		logger: logger,
	}
}

// ListMovies returns the sorted names of playable files in the movies directory.
// A missing directory yields an empty list.
func (s service) ListMovies(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "movies directory does not exist", "dir", s.dir)
			return []string{}, nil
		}

		return nil, fmt.Errorf("failed to read movies directory: %w", err)
	}

	movies := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if _, ok := contentTypes[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			movies = append(movies, entry.Name())
		}
	}
	slices.Sort(movies)

	return movies, nil
}

type Movie struct {
	Name        string
	ContentType string
	ModTime     time.Time
	Size        int64
	Content     io.ReadSeekCloser
}

// OpenMovie opens a movie by file name. Any directory part of name is ignored.
func (s service) OpenMovie(ctx context.Context, name string) (Movie, error) {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return Movie{}, ErrMovieNotFound
	}

	file, err := s.fs.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Movie{}, ErrMovieNotFound
		}

		return Movie{}, fmt.Errorf("failed to open movie: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return Movie{}, fmt.Errorf("failed to stat movie: %w", err)
	}

	if info.IsDir() {
		file.Close()
		return Movie{}, ErrMovieNotFound
	}

	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		contentType = defaultContentType
	}

	s.logger.DebugContext(ctx, "movie opened", "name", name, "size", info.Size())
	return Movie{
		Name:        name,
		ContentType: contentType,
		ModTime:     info.ModTime(),
		Size:        info.Size(),
		Content:     file,
	}, nil
}
