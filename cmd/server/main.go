package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"runetick/config"
	"runetick/internal/app"
	"runetick/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run server until interrupted
	if err := app.Run(ctx, cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}
