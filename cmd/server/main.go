package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/minigames/internal/config"
	"github.com/playperu/minigames/internal/engine/quiz"
	"github.com/playperu/minigames/internal/engine/sentence"
	"github.com/playperu/minigames/internal/handler/health"
	"github.com/playperu/minigames/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Engines ---
	engines := server.NewRegistry(cfg.CountdownTicks, cfg.CountdownInterval)
	engines.Register(quiz.Family{}, cfg.QuizRevealDelay)
	engines.Register(sentence.Family{}, cfg.SentenceRevealDelay)
	logger.Info("engines registered", "engines", engines.Names())

	checks := map[string]health.Checker{
		"engines": engines,
	}

	// --- Live relay ---
	var broker server.Broker
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		rb := server.NewRedisBroker(rdb)
		broker = rb
		checks["redis"] = rb
	} else {
		broker = server.NewMemoryBroker()
		logger.Info("using in-process live relay")
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Engines: engines,
		Broker:  broker,
		Checks:  checks,
		Play: server.PlayOptions{
			OriginPatterns: cfg.WSOriginPatterns,
			SessionTimeout: cfg.WSSessionTimeout,
		},
		GamesDir: cfg.GamesDir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
