package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchparty/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
		usage:        "Server port",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	store = configVar[string]{
		envKey:       "SERVER_STORE",
		flagKey:      "store",
		defaultValue: app.StoreMemory,
		usage:        "Room store: memory or redis",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
	redisDB = configVar[int]{
		envKey:       "REDIS_DB",
		flagKey:      "redis-db",
		defaultValue: 0,
		usage:        "Redis database",
	}
	roomIdleTimeout = configVar[time.Duration]{
		envKey:       "SERVER_ROOM_IDLE_TIMEOUT",
		flagKey:      "room-idle-timeout",
		defaultValue: 6 * time.Hour,
		usage:        "Time after which a room without activity is closed",
	}
	janitorInterval = configVar[time.Duration]{
		envKey:       "SERVER_JANITOR_INTERVAL",
		flagKey:      "janitor-interval",
		defaultValue: time.Minute,
		usage:        "How often idle rooms are looked for",
	}
	moviesDir = configVar[string]{
		envKey:       "SERVER_MOVIES_DIR",
		flagKey:      "movies-dir",
		defaultValue: "./movies",
		usage:        "Directory with movies to stream",
	}
	staticDir = configVar[string]{
		envKey:       "SERVER_STATIC_DIR",
		flagKey:      "static-dir",
		defaultValue: "",
		usage:        "Directory served under / (disabled when empty)",
	}
	sendBuffer = configVar[int]{
		envKey:       "SERVER_SEND_BUFFER",
		flagKey:      "send-buffer",
		defaultValue: 64,
		usage:        "Outbound messages queued per connection",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.String(store.flagKey, store.defaultValue, store.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Int(redisDB.flagKey, redisDB.defaultValue, redisDB.usage)
	pflag.Duration(roomIdleTimeout.flagKey, roomIdleTimeout.defaultValue, roomIdleTimeout.usage)
	pflag.Duration(janitorInterval.flagKey, janitorInterval.defaultValue, janitorInterval.usage)
	pflag.String(moviesDir.flagKey, moviesDir.defaultValue, moviesDir.usage)
	pflag.String(staticDir.flagKey, staticDir.defaultValue, staticDir.usage)
	pflag.Int(sendBuffer.flagKey, sendBuffer.defaultValue, sendBuffer.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(host)
	bind(port)
	bind(logLevel)
	bind(store)
	bind(redisHost)
	bind(redisPort)
	bind(redisPassword)
	bind(redisDB)
	bind(roomIdleTimeout)
	bind(janitorInterval)
	bind(moviesDir)
	bind(staticDir)
	bind(sendBuffer)

	return &app.AppConfig{
		Host:            viper.GetString(host.flagKey),
		Port:            viper.GetInt(port.flagKey),
		LogLevel:        viper.GetString(logLevel.flagKey),
		Store:           viper.GetString(store.flagKey),
		RedisHost:       viper.GetString(redisHost.flagKey),
		RedisPort:       viper.GetInt(redisPort.flagKey),
		RedisPassword:   viper.GetString(redisPassword.flagKey),
		RedisDB:         viper.GetInt(redisDB.flagKey),
		RoomIdleTimeout: viper.GetDuration(roomIdleTimeout.flagKey),
		JanitorInterval: viper.GetDuration(janitorInterval.flagKey),
		MoviesDir:       viper.GetString(moviesDir.flagKey),
		StaticDir:       viper.GetString(staticDir.flagKey),
		SendBuffer:      viper.GetInt(sendBuffer.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
