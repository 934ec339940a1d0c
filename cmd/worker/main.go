package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"deskhub/config"
	"deskhub/infras/kafka"
	"deskhub/internal/handlers/consumer"
	"deskhub/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := kafka.New(cfg)
	defer func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}()

	worker := consumer.New(client, cfg)

	log.Info().Str("notification", cfg.Kafka.Topics.Notification).Str("audit", cfg.Kafka.Topics.Audit).Msg("Starting booking event worker.")

	worker.Run(ctx)
}
