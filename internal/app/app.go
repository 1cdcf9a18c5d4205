package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/sharetube/watchparty/internal/controller"
	"github.com/sharetube/watchparty/internal/domain"
	connInmemory "github.com/sharetube/watchparty/internal/repository/connection/inmemory"
	"github.com/sharetube/watchparty/internal/repository/room"
	roomInmemory "github.com/sharetube/watchparty/internal/repository/room/inmemory"
	roomRedis "github.com/sharetube/watchparty/internal/repository/room/redis"
	"github.com/sharetube/watchparty/internal/service/media"
	roomService "github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
	"github.com/sharetube/watchparty/pkg/eventloop"
	"github.com/sharetube/watchparty/pkg/randstr"
	"github.com/sharetube/watchparty/pkg/redisclient"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	loopBuffer = 256
)

type AppConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	LogLevel        string        `json:"log_level"`
	Store           string        `json:"store"`
	RedisHost       string        `json:"redis_host"`
	RedisPort       int           `json:"redis_port"`
	RedisPassword   string        `json:"-"`
	RedisDB         int           `json:"redis_db"`
	RoomIdleTimeout time.Duration `json:"room_idle_timeout"`
	JanitorInterval time.Duration `json:"janitor_interval"`
	MoviesDir       string        `json:"movies_dir"`
	StaticDir       string        `json:"static_dir"`
	SendBuffer      int           `json:"send_buffer"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.Store != StoreMemory && cfg.Store != StoreRedis {
		return fmt.Errorf("store must be %q or %q", StoreMemory, StoreRedis)
	}
	if cfg.RoomIdleTimeout <= 0 {
		return fmt.Errorf("room idle timeout must be greater than 0")
	}
	if cfg.JanitorInterval <= 0 {
		return fmt.Errorf("janitor interval must be greater than 0")
	}
	if cfg.SendBuffer < 1 {
		return fmt.Errorf("send buffer must be greater than 0")
	}
	if cfg.MoviesDir == "" {
		return fmt.Errorf("movies dir must be set")
	}
	return nil
}

type roomRepo interface {
	CreateRoom(context.Context, *room.CreateRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	IsRoomExists(context.Context, string) (bool, error)
	UpdatePlayer(context.Context, *room.UpdatePlayerParams) error
	DeleteRoom(context.Context, string) error
	GetRoomIdsByHost(context.Context, string) ([]string, error)
}

// newRoomRepo opens the configured room store and returns a func releasing it.
func newRoomRepo(cfg *AppConfig, logger *slog.Logger) (roomRepo, func() error, error) {
	switch cfg.Store {
	case StoreRedis:
		rc, err := redisclient.NewRedisClient(&redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}

		return roomRedis.NewRepo(rc, cfg.RoomIdleTimeout, logger), rc.Close, nil
	case StoreMemory:
		return roomInmemory.NewRepo(cfg.RoomIdleTimeout, logger), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	roomRepo, closeRoomRepo, err := newRoomRepo(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRoomRepo()

	connRepo := connInmemory.NewRepo(logger)
	roomService := roomService.NewService(roomRepo, connRepo, randstr.New([]byte(domain.RoomIdAlphabet)), logger)
	mediaService := media.NewService(afero.NewOsFs(), cfg.MoviesDir, logger)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()

	loop := eventloop.New(loopBuffer)
	go loop.Run(loopCtx)

	controller := controller.NewController(roomService, mediaService, loop, logger, controller.Config{
		SendBuffer: cfg.SendBuffer,
		StaticDir:  cfg.StaticDir,
	})
	go controller.RunJanitor(loopCtx, cfg.JanitorInterval)

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()

	return nil
}
