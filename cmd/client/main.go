package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sharetube/watchparty/internal/client"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

var rootCmd = &cobra.Command{
	Use:          "watchparty",
	Short:        "Terminal client for watchparty rooms",
	SilenceUsage: true,
}

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Create a room and control playback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd.Context(), client.RoleHost, "")
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <room-id>",
	Short: "Join a room and follow the host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd.Context(), client.RoleGuest, args[0])
	},
}

var (
	flagServer   string
	flagName     string
	flagLogLevel string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagServer, "server", "http://localhost:8080", "watchparty server base URL")
	flags.StringVar(&flagName, "name", "", "display name used in chat")
	flags.StringVar(&flagLogLevel, "log-level", "WARN", "logging level")

	rootCmd.AddCommand(hostCmd, joinCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*slog.Logger, error) {
	logLevel := slog.LevelWarn
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(flagLogLevel))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	return slog.New(&ctxlogger.ContextHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}),
	}), nil
}

func runSession(ctx context.Context, role client.Role, roomId string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session, err := client.Dial(ctx, flagServer, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	player := client.NewVirtualPlayer()
	view := client.NewConsoleView(os.Stdout)
	r := client.NewReconciler(client.Config{
		Role:   role,
		Name:   flagName,
		RoomId: roomId,
	}, player, session, view, logger)
	player.SetListener(r)
	go player.Run(ctx)

	if err := r.Start(); err != nil {
		return err
	}

	shell := client.NewShell(r, player, client.HTTPMovieLister{Server: flagServer}, os.Stdout)

	sessionDone := make(chan error, 1)
	go func() { sessionDone <- session.Run(ctx, r) }()

	shellDone := make(chan error, 1)
	go func() { shellDone <- shell.Run(ctx, os.Stdin) }()

	select {
	case err := <-sessionDone:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case err := <-shellDone:
		return err
	}
}
