package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"futurecustomer/internal/cache"
	"futurecustomer/internal/config"
	"futurecustomer/internal/metrics"
	"futurecustomer/internal/repository"
	"futurecustomer/internal/simulation"
	"futurecustomer/internal/transport/rest"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.LoadSimulator()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.SlogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	ctx := context.Background()

	// Log model settings
	if cfg.AI.IsEnabled() {
		logger.Info("AI config", "responder", cfg.AI.Models.Responder, "transformer", cfg.AI.Models.Transformer, "apiKey", "configured")
	} else {
		logger.Info("AI config", "apiKey", "not set, using mock responder")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		fatal(logger, "failed to connect to MongoDB", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		fatal(logger, "failed to ping MongoDB", err)
	}
	logger.Info("connected to MongoDB", "db", cfg.MongoDB)

	respondents := repository.NewRespondentRepo(mongoClient.Database(cfg.MongoDB))
	if n, err := respondents.Count(ctx); err == nil && n == 0 {
		logger.Warn("respondent dataset is empty, agents will be synthetic")
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		fatal(logger, "failed to ping Redis", err)
	}
	logger.Info("connected to Redis")

	var llm simulation.Completer
	if cfg.AI.IsEnabled() {
		llm = simulation.NewGeminiClient(&cfg.AI)
	}

	m := metrics.New()
	sim := simulation.NewService(
		cache.NewSimulationCache(rdb, cfg.CacheTTL),
		respondents,
		simulation.NewResponder(llm, cfg.AI.Models.Responder, logger),
		simulation.NewTransformer(llm, cfg.AI.Models.Transformer, logger),
		m,
		logger,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           rest.NewSimulatorRouter(&rest.SimulatorContainer{Simulator: sim, Metrics: m, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("simulator starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "listen failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down simulator")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("simulator forced to shutdown", "error", err)
	}
	logger.Info("simulator exited")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
