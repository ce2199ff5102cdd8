package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pablinho0889/business-bloom-b182c320/internal/config"
	"github.com/pablinho0889/business-bloom-b182c320/internal/connectivity"
	"github.com/pablinho0889/business-bloom-b182c320/internal/notify"
	"github.com/pablinho0889/business-bloom-b182c320/internal/queue"
	"github.com/pablinho0889/business-bloom-b182c320/internal/remote"
	"github.com/pablinho0889/business-bloom-b182c320/internal/router"
	"github.com/pablinho0889/business-bloom-b182c320/internal/service"
	"github.com/pablinho0889/business-bloom-b182c320/internal/stockcache"
	"github.com/pablinho0889/business-bloom-b182c320/internal/store"
	"github.com/pablinho0889/business-bloom-b182c320/internal/syncer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.AccessToken == "" {
		log.Fatal().Msg("ACCESS_TOKEN is required")
	}

	identity, err := remote.IdentityFromToken(cfg.AccessToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read identity from access token")
	}
	if cfg.BusinessID != "" {
		identity.BusinessID = cfg.BusinessID
	}
	if identity.BusinessID == "" {
		log.Fatal().Msg("no business id: token lacks business_id claim and BUSINESS_ID is unset")
	}

	// The store object is constructed here and injected everywhere — its
	// lifecycle belongs to this startup routine, not to package init.
	st, err := store.OpenSQLite(cfg.DataPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := notify.NewFeed(100)

	q := queue.New(st)
	if err := q.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load pending sales")
	}

	cache := stockcache.New(st)
	if err := cache.Load(ctx); err != nil {
		// Best-effort hydration — the next trusted refresh rebuilds it.
		log.Warn().Err(err).Msg("failed to hydrate stock cache")
	}

	api := remote.NewClient(cfg.BackendURL, cfg.AccessToken)

	monitor := connectivity.New(ctx, connectivity.Config{
		Probe:       api,
		Notifier:    feed,
		Interval:    time.Duration(cfg.ProbeIntervalSeconds) * time.Second,
		SettleDelay: time.Duration(cfg.SettleDelayMillis) * time.Millisecond,
	})

	engine := syncer.New(q, api, monitor.IsOnline, feed)
	engine.SubmitDelay = time.Duration(cfg.SubmitDelayMillis) * time.Millisecond

	// Wired before Start: no probe goroutine exists yet, so the callback
	// cannot fire against a half-built graph.
	monitor.OnOnline = func() { engine.Drain(ctx) }
	monitor.Start(ctx)

	svc := service.NewSaleService(identity, q, cache, api, monitor, feed)

	if monitor.IsOnline() {
		if err := svc.RefreshProducts(ctx); err != nil {
			log.Warn().Err(err).Msg("initial product refresh failed")
		}
		// Entries left over from the last run — sync them once the rest of
		// startup has settled.
		if q.Count() > 0 {
			time.AfterFunc(time.Duration(cfg.StartupSyncMillis)*time.Millisecond, func() {
				engine.Drain(ctx)
			})
		}
	}

	r := router.New(cfg, router.Deps{
		Sales:   svc,
		Engine:  engine,
		Monitor: monitor,
		Queue:   q,
		Feed:    feed,
		Store:   st,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("offline sales agent listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down agent…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	cancel()
	if err := st.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close local store")
	}
	log.Info().Msg("agent exited")
}
