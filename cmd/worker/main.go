// Package main runs the push notification worker. It drains the Redis job
// queue and delivers notifications through OneSignal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ysrc26/footbal-squad-manager/config"
	"github.com/ysrc26/footbal-squad-manager/internal/notify"
	"github.com/ysrc26/footbal-squad-manager/pkg/queue"
	"github.com/ysrc26/footbal-squad-manager/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	sender := notify.NewSender(cfg.Push.OneSignalAppID, cfg.Push.OneSignalAPIKey, logger)
	processor := notify.NewProcessor(jobQueue, sender, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("push worker started")
	processor.Run(ctx)
	logger.Info("push worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
