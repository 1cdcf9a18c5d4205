package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var errUsage = errors.New("usage")

const shellHelp = `commands:
  movies          list movies on the server (host)
  select <file>   select a movie (host)
  toggle          play/pause (host) or re-sync (guest)
  seek <seconds>  jump to a position (host)
  say <text>      send a chat message
  status          show the local player state
  quit            leave the room`

// MovieLister lists the movies a server can stream.
type MovieLister interface {
	ListMovies(ctx context.Context) ([]string, error)
}

// HTTPMovieLister queries GET /api/v1/movies of a watchparty server.
type HTTPMovieLister struct {
	Server string
	Client *http.Client
}

func (l HTTPMovieLister) ListMovies(ctx context.Context) ([]string, error) {
	endpoint, err := url.JoinPath(l.Server, "/api/v1/movies")
	if err != nil {
		return nil, fmt.Errorf("failed to build movies url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	httpClient := l.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list movies: unexpected status %s", resp.Status)
	}

	var movies []string
	if err := json.NewDecoder(resp.Body).Decode(&movies); err != nil {
		return nil, fmt.Errorf("failed to decode movies: %w", err)
	}

	return movies, nil
}

// Shell turns typed commands into reconciler actions.
type Shell struct {
	r      *Reconciler
	media  MediaElement
	movies MovieLister
	out    io.Writer
}

func NewShell(r *Reconciler, media MediaElement, movies MovieLister, out io.Writer) *Shell {
	return &Shell{
		r:      r,
		media:  media,
		movies: movies,
		out:    out,
	}
}

// Run executes lines from in until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		quit, err := s.Exec(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}

		if quit {
			return nil
		}
	}

	return scanner.Err()
}

// Exec runs one command line. It reports whether the user asked to quit.
func (s *Shell) Exec(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false, nil
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "quit", "exit":
		return true, nil
	case "movies":
		movies, err := s.movies.ListMovies(ctx)
		if err != nil {
			return false, err
		}
		for _, m := range movies {
			fmt.Fprintln(s.out, m)
		}
	case "select":
		if arg == "" {
			return false, fmt.Errorf("%w: select <file>", errUsage)
		}
		return false, s.r.SelectMovie(arg)
	case "toggle":
		return false, s.r.TogglePlayback()
	case "seek":
		t, err := strconv.ParseFloat(arg, 64)
		if err != nil || t < 0 {
			return false, fmt.Errorf("%w: seek <seconds>", errUsage)
		}
		return false, s.r.Seek(t)
	case "say":
		if arg == "" {
			return false, fmt.Errorf("%w: say <text>", errUsage)
		}
		return false, s.r.SendChat(arg)
	case "status":
		state := "playing"
		if s.media.Paused() {
			state = "paused"
		}
		movie := s.media.Movie()
		if movie == "" {
			movie = "-"
		}
		fmt.Fprintf(s.out, "%s room=%s movie=%s %s at %.1fs\n",
			s.r.Role(), s.r.RoomId(), movie, state, s.media.CurrentTime())
	default:
		return false, fmt.Errorf("unknown command %q, type help", cmd)
	}

	return false, nil
}
