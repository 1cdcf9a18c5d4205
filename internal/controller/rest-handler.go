package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/watchparty/internal/service/media"
	"github.com/sharetube/watchparty/pkg/rest"
)

func (c controller) listMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := c.mediaService.ListMovies(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to list movies", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to list movies"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, movies)
}

// streamMovie serves a movie file with byte range support so players can seek.
func (c controller) streamMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := c.mediaService.OpenMovie(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		if errors.Is(err, media.ErrMovieNotFound) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to open movie", "error", err)
		http.Error(w, "failed to open movie", http.StatusInternalServerError)
		return
	}
	defer movie.Content.Close()

	w.Header().Set("Content-Type", movie.ContentType)
	w.Header().Set("Accept-Ranges", "bytes")
	http.ServeContent(w, r, movie.Name, movie.ModTime, movie.Content)
}
