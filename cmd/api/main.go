package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"restoreviews/internal/adapters/backend"
	server "restoreviews/internal/adapters/http_server"
	"restoreviews/internal/adapters/observability"
	redisad "restoreviews/internal/adapters/redis"
	"restoreviews/internal/app"
	"restoreviews/internal/domain"
	"restoreviews/internal/shared"
	mysqlrepo "restoreviews/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	if cfg.MetricsAddr != cfg.HTTPAddr {
		observability.Serve(cfg.MetricsAddr, reg)
	}

	norm, err := cfg.NewNormalizer()
	if err != nil {
		log.Fatal().Err(err).Msg("normalizer setup failed")
	}

	// source
	var src domain.ReviewSource
	switch cfg.Source {
	case "mysql":
		var db *sql.DB
		db, err = cfg.OpenMySQL(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("mysql unavailable")
		}
		defer db.Close()
		src = mysqlrepo.New(db)
	default:
		src, err = backend.New(cfg.BackendBase, cfg.BackendToken, cfg.BackendRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize backend client")
		}
	}
	log.Info().Str("source", cfg.Source).Msg("review source ready")

	// cache is optional: the dashboard is cheap to rebuild from the snapshot
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, serving without cache")
		_ = rc.Close()
	} else {
		defer rc.Close()
		cache = rc
	}

	// deps
	store := app.NewStore()
	loader := app.NewLoader(src, norm, store, observability.ObserveRefresh)
	q := app.NewQueryService(store, cache, cfg.CacheTTL)
	go loader.Run(ctx, cfg.RefreshInterval)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Loader: loader, RefreshTimeout: 2 * time.Minute})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
