package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"deskhub/config"
	kafkaMocks "deskhub/infras/kafka/mocks"
	"deskhub/internal/domains/booking/event"
	"deskhub/internal/handlers/consumer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	previous := log.Logger
	log.Logger = zerolog.New(buf)

	t.Cleanup(func() { log.Logger = previous })

	return buf
}

func message(t *testing.T, key string, value any) kafkaGo.Message {
	t.Helper()

	raw, err := json.Marshal(value)
	require.NoError(t, err)

	return kafkaGo.Message{Key: []byte(key), Value: raw}
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.ConsumerGroup = "deskhub-worker"
	cfg.Kafka.Topics.Notification = "booking.notification"
	cfg.Kafka.Topics.Audit = "booking.audit"

	client.EXPECT().Consume(gomock.Any(), "deskhub-worker", "booking.notification", gomock.Any())
	client.EXPECT().Consume(gomock.Any(), "deskhub-worker", "booking.audit", gomock.Any())

	worker := consumer.New(client, cfg)
	worker.Run(context.Background())
}

func TestHandleNotification(t *testing.T) {
	buf := captureLogs(t)

	consumer.HandleNotification(message(t, "b1", event.Notification{
		Action:       event.ActionCancelled,
		BookingID:    "b1",
		NewStatus:    "CANCELLED",
		ContactEmail: "ana@example.com",
	}))

	out := buf.String()
	assert.Contains(t, out, `"booking_id":"b1"`)
	assert.Contains(t, out, `"action":"booking.cancelled"`)
	assert.Contains(t, out, `"to":"ana@example.com"`)
}

func TestHandleAudit(t *testing.T) {
	buf := captureLogs(t)

	consumer.HandleAudit(message(t, "b1", event.Audit{
		ActorID:     "admin-1",
		Action:      event.ActionStatusChanged,
		BookingID:   "b1",
		BeforeState: &event.State{Status: "PENDING"},
		AfterState:  &event.State{Status: "CONFIRMED"},
	}))

	out := buf.String()
	assert.Contains(t, out, `"before_status":"PENDING"`)
	assert.Contains(t, out, `"after_status":"CONFIRMED"`)
	assert.Contains(t, out, `"actor":"admin-1"`)
}

func TestHandle_BadPayload(t *testing.T) {
	buf := captureLogs(t)

	consumer.HandleAudit(kafkaGo.Message{Key: []byte("b1"), Value: []byte("not json")})

	assert.NotContains(t, buf.String(), "booking audit")
}
