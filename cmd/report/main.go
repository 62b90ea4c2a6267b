package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"restoreviews/internal/adapters/backend"
	"restoreviews/internal/adapters/console"
	"restoreviews/internal/adapters/observability"
	"restoreviews/internal/app"
	"restoreviews/internal/domain"
	"restoreviews/internal/shared"
	mysqlrepo "restoreviews/internal/storage/mysql"
)

func main() {
	sortFlag := flag.String("sort", "rating", "rating | likes | recent")
	csvOut := flag.String("csv", "", "also export reviews to this CSV file")
	timeout := flag.Duration("timeout", 2*time.Minute, "fetch timeout")
	flag.Parse()

	cfg := shared.Load()
	// logs go to stderr so the table can be piped
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv, cfg.LogLevel)

	policy, ok := domain.ParseSortPolicy(*sortFlag)
	if !ok {
		log.Fatal().Str("sort", *sortFlag).Msg("unknown sort policy")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	norm, err := cfg.NewNormalizer()
	if err != nil {
		log.Fatal().Err(err).Msg("normalizer setup failed")
	}

	var src domain.ReviewSource
	if cfg.Source == "mysql" {
		db, err := cfg.OpenMySQL(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("mysql unavailable")
		}
		defer db.Close()
		src = mysqlrepo.New(db)
	} else {
		src, err = backend.New(cfg.BackendBase, cfg.BackendToken, cfg.BackendRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize backend client")
		}
	}

	store := app.NewStore()
	if _, err := app.NewLoader(src, norm, store, nil).Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("fetch failed")
	}
	q := app.NewQueryService(store, nil, 0)

	view, err := q.Dashboard(ctx, policy)
	if err != nil {
		log.Fatal().Err(err).Msg("dashboard failed")
	}
	if err := console.WriteTable(os.Stdout, view); err != nil {
		log.Fatal().Err(err).Msg("write table failed")
	}

	if *csvOut != "" {
		reviews, err := q.Reviews(ctx, domain.ReviewFilter{})
		if err != nil {
			log.Fatal().Err(err).Msg("reviews failed")
		}
		f, err := os.Create(*csvOut)
		if err != nil {
			log.Fatal().Err(err).Msg("create csv failed")
		}
		defer f.Close()
		if err := app.WriteCSV(f, reviews); err != nil {
			log.Fatal().Err(err).Msg("write csv failed")
		}
		log.Info().Str("file", *csvOut).Int("reviews", len(reviews)).Msg("csv exported")
	}
}
