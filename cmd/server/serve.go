package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/layout"
	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/scheduler"
	"github.com/iliyamo/event-ticketing/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the activity consumer and the scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.L().WithField("env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	activity := repository.NewActivityRepo(db)

	var pub handler.Publisher
	if cfg.Broker.URL != "" {
		pub = service.NewActivityPublisher(cfg.Broker.URL, cfg.Broker.ActivityQueue)
	}

	e := router.New(router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Catalog:  handler.NewCatalogHandler(repository.NewVenueRepo(db), events, repository.NewAreaRepo(db), repository.NewSeatRepo(db)),
		Layout:   handler.NewLayoutHandler(layout.NewReconciler(layout.NewSQLStore(db)), events, pub, cache),
		Tickets:  handler.NewTicketHandler(repository.NewTicketRepo(db)),
		Activity: handler.NewActivityHandler(events, activity),
		Public:   handler.NewPublicHandler(events),
		DB:       db,
	}, router.Options{
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit:      middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:          cache,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down http server")
		return e.Shutdown(shutdownCtx)
	})

	if cfg.Broker.ConsumerEnabled && cfg.Broker.URL != "" {
		g.Go(func() error {
			return queue.NewConsumer(cfg.Broker.URL, cfg.Broker.ActivityQueue, activity).Run(gctx)
		})
	}
	g.Go(func() error {
		return scheduler.Run(gctx, tokens, cfg.TokenCleanup)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
