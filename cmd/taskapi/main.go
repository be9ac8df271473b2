// Command taskapi serves the users and tasks collections from MongoDB. The
// panel uses it as its remote endpoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/api"
	"github.com/taskpanel/taskpanel/internal/api/handler"
	"github.com/taskpanel/taskpanel/internal/core/service"
	mongodb "github.com/taskpanel/taskpanel/internal/infrastructure/db/mongo"
	"github.com/taskpanel/taskpanel/internal/localstore"
	"github.com/taskpanel/taskpanel/internal/pkg/config"
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
		Service: "taskapi",
	})

	if err := serve(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("taskapi stopped")
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := mongodb.Open(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	tasks := store.Tasks()
	users := store.Users()
	if err := tasks.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}

	if cfg.Mongo.Seed {
		if err := seedCollections(ctx, cfg.Panel.SeedFile, tasks, users, log); err != nil {
			return err
		}
	}

	records := service.NewRecordService(tasks, users, logger.Component("records"))
	checks := []handler.Check{{Name: "mongodb", Ping: store.Ping}}
	e := api.NewRecordsRouter(records, cfg.JWTSecret, checks, logger.Component("http"))

	return api.Serve(ctx, e, ":"+cfg.Port, log)
}

// seedCollections fills empty collections with the demo data.
func seedCollections(ctx context.Context, path string, tasks *mongodb.TaskRepository, users *mongodb.UserRepository, log zerolog.Logger) error {
	seed, err := localstore.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	nu, err := users.Seed(ctx, seed.Users)
	if err != nil {
		return err
	}
	nt, err := tasks.Seed(ctx, seed.Tasks)
	if err != nil {
		return err
	}
	if nu+nt > 0 {
		log.Info().Int("users", nu).Int("tasks", nt).Msg("seeded empty collections")
	}
	return nil
}
