package kafka_test

import (
	"testing"

	"deskhub/infras/kafka"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestMessageRoundTrip(t *testing.T) {
	message := kafka.Message{Key: "room-1", Value: payload{ID: "b-1", Count: 2}}

	msg, err := message.ToKafkaMessage("booking.audit")
	require.NoError(t, err)

	assert.Equal(t, "booking.audit", msg.Topic)
	assert.Equal(t, []byte("room-1"), msg.Key)
	assert.JSONEq(t, `{"id":"b-1","count":2}`, string(msg.Value))

	key, decoded, err := kafka.DecodeKafkaMessage[payload](msg)
	require.NoError(t, err)

	assert.Equal(t, "room-1", key)
	assert.Equal(t, payload{ID: "b-1", Count: 2}, decoded)
}

func TestToKafkaMessage_Unmarshalable(t *testing.T) {
	message := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := message.ToKafkaMessage("topic")
	assert.Error(t, err)
}

func TestDecodeKafkaMessage_Invalid(t *testing.T) {
	_, _, err := kafka.DecodeKafkaMessage[payload](kafkaGo.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
