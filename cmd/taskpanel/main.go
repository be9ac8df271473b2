// Command taskpanel serves the admin task panel. Collections come from the
// task API while it answers and from the local store otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/api"
	"github.com/taskpanel/taskpanel/internal/api/handler"
	"github.com/taskpanel/taskpanel/internal/app"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/core/service"
	redisdb "github.com/taskpanel/taskpanel/internal/infrastructure/db/redis"
	"github.com/taskpanel/taskpanel/internal/localstore"
	"github.com/taskpanel/taskpanel/internal/pkg/config"
	"github.com/taskpanel/taskpanel/internal/realtime"
	"github.com/taskpanel/taskpanel/internal/remote"
	"github.com/taskpanel/taskpanel/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "taskpanel",
	})

	if err := serve(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("taskpanel stopped")
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	seed, err := localstore.LoadSeed(cfg.Panel.SeedFile)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}

	kv, checks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := remote.NewClient(cfg.Panel.RemoteURL)
	if err != nil {
		return fmt.Errorf("remote client: %w", err)
	}
	checks = append(checks, handler.Check{Name: "remote", Ping: client.Ping, Optional: true})

	gateway := service.NewGateway(client, localstore.NewCollections(kv, seed, logger.Component("localstore")), logger.Component("gateway"),
		service.GatewayOptions{AssignToCreator: cfg.Panel.AssignToCreator})
	if !gateway.Probe(ctx) {
		log.Warn().Str("remote_url", cfg.Panel.RemoteURL).Msg("task API unreachable, serving from local store")
	}

	sessions := service.NewSessionService(gateway, cfg.JWTSecret, cfg.Panel.AdminOnly, logger.Component("session"))

	dispatcher := realtime.NewDispatcher(cfg.Panel.ChannelWorkers, logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	hub := realtime.NewHub(dispatcher, realtime.Options{
		Delay: cfg.Panel.ChannelDelay,
		Log:   logger.Component("realtime"),
	}, 0)

	board := app.NewBoard(gateway)
	app.StartPoller(ctx, board, cfg.Panel.PollInterval, logger.Component("poller"))

	e := api.NewPanelRouter(api.PanelDeps{
		DashboardMaxAge: cfg.Panel.DashboardMaxAge,
		Sessions:        sessions,
		Gateway:         gateway,
		Board:           board,
		Hub:             hub,
		Jar:             handler.NewCookieJar([]byte(cfg.Panel.CookieHashKey), cfg.Panel.CookieSecure),
		ReadinessChecks: checks,
		Log:             logger.Component("http"),
	})

	return api.Serve(ctx, e, ":"+cfg.Port, log)
}

// openStore returns the local key-value store selected by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, []handler.Check, func(), error) {
	if cfg.Panel.StoreBackend == "memory" {
		return localstore.NewMemoryStore(), nil, func() {}, nil
	}

	kv, err := redisdb.Open(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	checks := []handler.Check{{Name: "redis", Ping: kv.Ping}}
	return kv, checks, func() { _ = kv.Close() }, nil
}
