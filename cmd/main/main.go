package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/CTAG07/FunMoneyGames/pkg/stats"
	"golang.org/x/sync/errgroup"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const (
	configPath      = "./config.json"
	shutdownTimeout = 10 * time.Second
)

func main() {
	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	actionChan := make(chan string, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
		<-osSignalChan
		baseLogger.Info("OS signal received, initiating shutdown.")
		actionChan <- actionShutdown
	}()

	for {
		action, err := run(actionChan)
		if err != nil {
			baseLogger.Error("An error occurred during server run, shutting down.", "error", err)
			os.Exit(1)
		}

		if action == actionRestart {
			baseLogger.Info("--- Server Restarting ---")
			continue
		}
		break
	}

	baseLogger.Info("FunMoneyGames has shut down.")
}

// newLogger builds the application logger from the configured level and format.
func newLogger(w io.Writer, cfg *ServerConfig) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if strings.ToLower(cfg.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// run hosts both servers and returns whenever they are shut down or restarted.
func run(actionChan chan string) (string, error) {
	cm, err := NewConfigManager(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	config := cm.Get()

	logger := newLogger(os.Stdout, config.Server)
	cm.SetLogger(logger)
	slog.SetDefault(logger)
	logger.Info("Starting server cycle...", "version", Version)

	db, dialect, err := openDatabase(config.Server)
	if err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		logger.Info("Closing database connection.")
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	setupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = db.PingContext(setupCtx); err != nil {
		return "", fmt.Errorf("failed to reach database: %w", err)
	}
	if err = setupAuthSchema(db, dialect); err != nil {
		return "", err
	}
	if err = stats.SetupSchema(setupCtx, db); err != nil {
		return "", err
	}

	server, err := NewServer(cm, logger, db, dialect, actionChan)
	if err != nil {
		return "", fmt.Errorf("failed to create server object: %w", err)
	}

	siteHttpServer := &http.Server{
		Addr:              config.Server.ServerAddr,
		Handler:           server.siteRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	apiHttpServer := &http.Server{
		Addr:              config.Server.ApiAddr,
		Handler:           server.apiMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		logger.Info("Starting api server", "address", apiHttpServer.Addr)
		if err := apiHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting site server", "address", siteHttpServer.Addr)
		if err := siteHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("site server failed: %w", err)
		}
		return nil
	})

	var action string
	select {
	case action = <-actionChan:
	case <-gctx.Done():
		// One of the servers failed to start or crashed; stop the other one too.
		action = actionShutdown
	}

	logger.Info("Stopping servers for " + action + "...")
	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err = apiHttpServer.Shutdown(ctx); err != nil {
		logger.Error("Api server shutdown failed", "error", err)
	}
	if err = siteHttpServer.Shutdown(ctx); err != nil {
		logger.Error("Site server shutdown failed", "error", err)
	}
	if err = g.Wait(); err != nil {
		return "", err
	}
	logger.Info("HTTP servers stopped.")

	return action, nil
}
