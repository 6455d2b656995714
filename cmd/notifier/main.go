package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spacebook/internal/notifications"
	"spacebook/pkg/config"
	"spacebook/pkg/kafka"
	kafkaconfig "spacebook/pkg/kafka/config"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting notifier worker")

	notifier := notifications.NewNotifier(notifications.NewLogSink(cfg.Log), cfg.Log)

	kafkaCfg := kafkaconfig.Load()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.NotifierGroupID,
		cfg.BookingEventsDLQTopic,
		notifier.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
