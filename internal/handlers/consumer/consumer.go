// Package consumer is the reference sink for booking events. It logs what a delivery channel or an
// audit store would receive.
package consumer

import (
	"context"
	"sync"

	"deskhub/config"
	"deskhub/infras/kafka"
	"deskhub/internal/domains/booking/event"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

type Consumer struct {
	client kafka.Client
	cfg    *config.Config
}

func New(client kafka.Client, cfg *config.Config) Consumer {
	return Consumer{
		client: client,
		cfg:    cfg,
	}
}

// Run consumes both topics until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	var wg sync.WaitGroup

	topics := map[string]func(kafkaGo.Message){
		c.cfg.Kafka.Topics.Notification: HandleNotification,
		c.cfg.Kafka.Topics.Audit:        HandleAudit,
	}

	for topic, handler := range topics {
		wg.Add(1)

		go func() {
			defer wg.Done()

			c.client.Consume(ctx, c.cfg.Kafka.ConsumerGroup, topic, handler)
		}()
	}

	wg.Wait()
}

func HandleNotification(msg kafkaGo.Message) {
	key, notification, err := kafka.DecodeKafkaMessage[event.Notification](msg)
	if err != nil {
		return
	}

	log.Info().
		Str("key", key).
		Str("action", string(notification.Action)).
		Str("booking_id", notification.BookingID).
		Str("status", notification.NewStatus).
		Str("to", notification.ContactEmail).
		Msg("booking notification")
}

func HandleAudit(msg kafkaGo.Message) {
	key, audit, err := kafka.DecodeKafkaMessage[event.Audit](msg)
	if err != nil {
		return
	}

	entry := log.Info().
		Str("key", key).
		Str("action", string(audit.Action)).
		Str("booking_id", audit.BookingID).
		Str("actor", audit.ActorID)

	if audit.BeforeState != nil {
		entry = entry.Str("before_status", audit.BeforeState.Status)
	}

	if audit.AfterState != nil {
		entry = entry.Str("after_status", audit.AfterState.Status)
	}

	entry.Msg("booking audit")
}
