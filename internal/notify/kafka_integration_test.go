//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"idport/internal/notify"
	"idport/internal/platform/kafka"
	"idport/pkg/testutil/containers"
)

func TestKafkaNotifierPublishes(t *testing.T) {
	kc := containers.NewKafkaContainer(t)
	ctx := context.Background()

	const topic = "notifications.sms"
	require.NoError(t, kc.CreateTopic(ctx, topic, 1, 1))

	producer, err := kafka.New(kafka.DefaultConfig(kc.Brokers), discardLogger())
	require.NoError(t, err)
	defer producer.Close()

	notifier := notify.NewKafkaNotifier(producer, topic)
	require.NoError(t, notifier.Send(ctx, notify.Message{
		Recipient: "+15551230000",
		Body:      "Your account was just signed in to from a new device.",
	}))

	consumer, err := kc.NewConsumer("notify-test", topic)
	require.NoError(t, err)
	defer consumer.Close()

	record, found := kc.WaitForMessage(ctx, consumer, 30*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "+15551230000"
	})
	require.True(t, found, "message should arrive on the sms topic")

	var msg notify.Message
	require.NoError(t, json.Unmarshal(record.Value, &msg))
	assert.Equal(t, "+15551230000", msg.Recipient)
	assert.Contains(t, msg.Body, "new device")
}

func TestDispatcherDeliversThroughKafka(t *testing.T) {
	kc := containers.NewKafkaContainer(t)
	ctx := context.Background()

	const topic = "notifications.sms"
	require.NoError(t, kc.CreateTopic(ctx, topic, 1, 1))

	producer, err := kafka.New(kafka.DefaultConfig(kc.Brokers), discardLogger())
	require.NoError(t, err)
	defer producer.Close()

	d := notify.NewDispatcher(notify.NewKafkaNotifier(producer, topic), discardLogger())
	assert.True(t, d.Enqueue(notify.Message{Recipient: "+15559870000", Body: "hello"}))
	require.NoError(t, d.Close())

	consumer, err := kc.NewConsumer("notify-dispatch-test", topic)
	require.NoError(t, err)
	defer consumer.Close()

	_, found := kc.WaitForMessage(ctx, consumer, 30*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "+15559870000"
	})
	assert.True(t, found)
}
