package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/aaronzipp/wolfden/internal/activity"
	"github.com/aaronzipp/wolfden/internal/commands"
	"github.com/aaronzipp/wolfden/internal/config"
	"github.com/aaronzipp/wolfden/internal/game"
	"github.com/aaronzipp/wolfden/internal/handlers"
	"github.com/aaronzipp/wolfden/internal/notify"
	"github.com/aaronzipp/wolfden/internal/persist"
	"github.com/aaronzipp/wolfden/internal/sse"
	"github.com/aaronzipp/wolfden/internal/store"
)

// activityStore is an activity.Store with its own background loop
type activityStore interface {
	activity.Store
	Run(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	snapshots, err := openSnapshots(ctx, cfg)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	acts, closeActivity, err := openActivity(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeActivity()

	hub := sse.NewHub(logger, cfg.SSESendTimeout)
	outbox := notify.NewOutbox(hub, logger, notify.OutboxOptions{
		Workers:  cfg.OutboxWorkers,
		MaxTries: cfg.OutboxTries,
		MaxWait:  cfg.OutboxMaxWait,
	})
	watchdog := activity.NewWatchdog(acts, cfg.InactivityTimeout, logger)

	router := commands.NewRouter(commands.Deps{
		Registry:  store.NewRegistry(),
		Outbox:    outbox,
		Activity:  watchdog,
		Snapshots: snapshots,
		Logger:    logger,
	}, commands.Settings{
		Prefix:         cfg.Prefix,
		DefaultVariant: cfg.DefaultVariant,
		SignupWindow:   cfg.SignupWindow,
		Timings:        game.Timings{Discussion: cfg.Discussion, Vote: cfg.Vote, Night: cfg.Night},
		Moderators:     cfg.Moderators,
	}, commands.DefaultCommands())
	watchdog.SetRemover(router)

	records, err := snapshots.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}
	if n := router.Restore(ctx, records); n > 0 || len(records) > 0 {
		logger.Info("restored sessions", "resumed", n, "stored", len(records))
	}

	mux := http.NewServeMux()
	(&handlers.Context{
		Router:    router,
		Hub:       hub,
		Logger:    logger,
		PublicURL: cfg.PublicURL,
	}).Register(mux)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return outbox.Run(ctx) })
	g.Go(func() error { return acts.Run(ctx) })
	g.Go(func() error { return watchdog.Run(ctx) })
	g.Go(func() error { return router.Run(ctx, cfg.TickInterval) })
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.Addr, "public_url", cfg.PublicURL, "inactivity_timeout", watchdog.Timeout())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}

func openSnapshots(ctx context.Context, cfg config.Config) (persist.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return persist.OpenSQLite(ctx, cfg.StoreDSN)
	case config.DriverPostgres:
		return persist.OpenPostgres(ctx, cfg.StoreDSN)
	case config.DriverBolt:
		return persist.OpenBolt(cfg.StoreDSN)
	default:
		return persist.NewMemory(), nil
	}
}

func openActivity(ctx context.Context, cfg config.Config, logger *slog.Logger) (activityStore, func(), error) {
	if cfg.ActivityBackend != config.ActivityRedis {
		return activity.NewMemoryStore(time.Second), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return activity.NewRedisStore(client, logger), func() { client.Close() }, nil
}
