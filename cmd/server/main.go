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

	"futurecustomer/internal/config"
	"futurecustomer/internal/gateway"
	"futurecustomer/internal/metrics"
	"futurecustomer/internal/service"
	"futurecustomer/internal/transport/rest"
	"futurecustomer/internal/transport/ws"
)

// @title Future Customer Workflow API
// @version 1.0
// @description Agent simulation workflow: agents, questions, future scenarios and exports
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.SlogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("started", "backend", cfg.BackendURL, "sessionTTL", cfg.SessionTTL, "toastTTL", cfg.ToastTTL)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	m := metrics.New()

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()

	// Backend client
	gw := gateway.NewClient(gateway.ClientConfig{
		BaseURL:     cfg.BackendURL,
		Timeout:     cfg.Gateway.Timeout,
		MaxRetries:  cfg.Gateway.MaxRetries,
		BackoffBase: cfg.Gateway.BackoffBase,
	}, m, logger)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.SessionTTL)
	sessionSvc := service.NewSessionService(cfg.SessionTTL, m, logger)
	workflowSvc := service.NewWorkflowService(sessionSvc, authSvc, gw, cfg.ToastTTL, m, logger)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)
	workflowSvc.SetBroadcaster(wsHub)

	go sessionSvc.RunJanitor(ctx, janitorInterval(cfg.SessionTTL))

	router := rest.NewRouter(&rest.Container{
		AuthService:     authSvc,
		WorkflowService: workflowSvc,
		WSHub:           wsHub,
		Metrics:         m,
		CORSOrigins:     cfg.CORSOrigins,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// janitorInterval sweeps a few times per TTL, at most once a minute
func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
