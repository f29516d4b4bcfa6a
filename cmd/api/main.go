package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/config"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/db"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/logger"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(ctx, cfg.DBDSN, log)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	log.Info("redis connected", zap.String("addr", cfg.RedisAddr))

	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Stop()

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		realtime.Relay(ctx, rdb, hub)
	}()

	app := server.New(server.Deps{
		Config:   cfg,
		DB:       gdb,
		Hub:      hub,
		Notifier: realtime.NewPublisher(rdb),
		Metrics:  metrics.New(),
		Logger:   log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", zap.String("port", cfg.AppPort))
		errCh <- app.Listen(":" + cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		stop()
		<-relayDone
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	<-relayDone
	return nil
}
