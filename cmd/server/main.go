package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/airfreight/internal/auth"
	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/config"
	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/logging"
	"github.com/hongminglow/airfreight/internal/rand"
	"github.com/hongminglow/airfreight/internal/server"
	"github.com/hongminglow/airfreight/internal/sim"
	"github.com/hongminglow/airfreight/internal/storage/backend"
)

const catalogCacheSize = 4096

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	if envErr != nil {
		logger.Info("no .env file found; relying on existing environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()

	cache, err := catalog.New(catalogCacheSize)
	if err != nil {
		return err
	}

	rules := cfg.Rules
	seed := rules.Spawn.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	svc := game.NewService(store, cache, rules.Game(), logger)
	spawner := sim.NewSpawner(rules.Spawner(), rand.New(seed), cache)
	simulator := sim.NewSimulator(store, cache, rules.Simulator(), spawner, logger)
	scheduler, err := sim.NewScheduler(store, simulator, rules.Scheduler(), logger)
	if err != nil {
		return err
	}
	if err := scheduler.Init(ctx, time.Now()); err != nil {
		return err
	}

	srv := server.New(cfg, server.Deps{
		Game:      svc,
		Scheduler: scheduler,
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Log:       logger,
	})

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cache.PurgeOn(gctx, hangup, logger)
	})
	g.Go(func() error {
		logger.Info("airfreight listening", zap.String("addr", cfg.HTTPAddress()), zap.String("storage", cfg.StorageDriver))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if period := rules.Tick.Background.Duration; period > 0 {
		g.Go(func() error {
			return scheduler.Run(gctx, period, time.Now)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	logger.Info("airfreight stopped")
	return err
}
