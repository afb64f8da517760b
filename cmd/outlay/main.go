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

	"outlay/internal/amqp"
	"outlay/internal/auth"
	"outlay/internal/cache"
	"outlay/internal/config"
	apphttp "outlay/internal/http"
	"outlay/internal/log"
	"outlay/internal/services"
	"outlay/internal/storage"
)

func main() {
	logger := log.New(log.ComponentApp, slog.LevelInfo)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open database", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	tokens, err := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to build token manager", log.FieldError, err)
		os.Exit(1)
	}

	// The broker is optional; without it expense events are simply not
	// published and the audit trail stays empty.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to connect to broker", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("expense event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("no AMQP_URL set, expense events disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	totals := cache.NewLRUCache[int64](cfg.CacheSize, cfg.CacheTTL)
	distincts := cache.NewLRUCache[[]string](cfg.CacheSize, cfg.CacheTTL)
	totals.StartJanitor(ctx, 10*time.Minute)
	distincts.StartJanitor(ctx, 10*time.Minute)

	expenses := services.NewExpenseService(repo, publisher, totals, distincts)
	accounts := services.NewAccountService(repo, auth.NewHasher(cfg.BcryptCost))
	resolver := auth.NewResolver(repo)

	srv := apphttp.NewServer(":"+cfg.Port, expenses, accounts, tokens, resolver, repo)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting outlay server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped")
}
