package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/semaphore"

	"restoreviews/internal/adapters/backend"
	"restoreviews/internal/adapters/observability"
	"restoreviews/internal/app"
	"restoreviews/internal/shared"
	mysqlrepo "restoreviews/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.BackendBase).
		Int("workers", cfg.Workers).
		Msg("mirror starting")

	db, err := cfg.OpenMySQL(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql unavailable")
	}
	defer db.Close()
	repo := mysqlrepo.New(db)

	client, err := backend.New(cfg.BackendBase, cfg.BackendToken, cfg.BackendRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	norm, err := cfg.NewNormalizer()
	if err != nil {
		log.Fatal().Err(err).Msg("normalizer setup failed")
	}
	svc := app.NewMirrorService(client, repo, norm)

	restaurants, err := svc.MirrorRestaurants(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("restaurant list failed")
	}

	bar := progressbar.NewOptions(len(restaurants),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("mirroring reviews"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var (
		wg              sync.WaitGroup
		reviews, failed atomic.Int64
	)

	for _, r := range restaurants {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("mirror interrupted")
			break
		}

		wg.Add(1)
		go func(id, name string) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() { _ = bar.Add(1) }()

			n, err := svc.MirrorRestaurant(ctx, id)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("id", id).Str("name", name).Err(err).Msg("mirror failed")
				return
			}
			reviews.Add(int64(n))
			log.Debug().Str("id", id).Int("reviews", n).Msg("mirror ok")
		}(r.ID, r.Name)
	}

	wg.Wait()
	_ = bar.Finish()

	misses, err := repo.ListMisses(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("list misses failed")
	}
	log.Info().
		Int("restaurants", len(restaurants)).
		Int64("reviews", reviews.Load()).
		Int64("failed", failed.Load()).
		Int("misses", len(misses)).
		Msg("mirror completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
