package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"inventory/internal/models"
)

// recordingAck is an amqp.Acknowledger that remembers the outcome.
type recordingAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *recordingAck) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *recordingAck) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, event models.OrderPlacedEvent, redelivered bool) amqp.Delivery {
	t.Helper()
	msg, err := encode(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: msg.Body, DeliveryTag: 1, Redelivered: redelivered}
}

func TestEncode(t *testing.T) {
	event := models.OrderPlacedEvent{EventID: "evt-1", OrderID: 3, ProductID: 4, Quantity: 2}
	msg, err := encode(event)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "evt-1", msg.MessageId)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)

	var decoded models.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event.OrderID, decoded.OrderID)
}

func TestProcess(t *testing.T) {
	c := &Client{logger: zap.NewNop()}
	ctx := context.Background()
	event := models.OrderPlacedEvent{EventID: "evt-1", OrderID: 9}

	t.Run("handled messages are acked", func(t *testing.T) {
		ack := &recordingAck{}
		var got models.OrderPlacedEvent
		c.process(ctx, delivery(t, ack, event, false), func(_ context.Context, e models.OrderPlacedEvent) error {
			got = e
			return nil
		})
		assert.True(t, ack.acked)
		assert.Equal(t, uint(9), got.OrderID)
	})

	t.Run("failed messages are requeued once", func(t *testing.T) {
		failing := func(context.Context, models.OrderPlacedEvent) error { return errors.New("downstream busy") }

		ack := &recordingAck{}
		c.process(ctx, delivery(t, ack, event, false), failing)
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeued)

		ack = &recordingAck{}
		c.process(ctx, delivery(t, ack, event, true), failing)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})

	t.Run("malformed messages are dropped", func(t *testing.T) {
		ack := &recordingAck{}
		called := false
		c.process(ctx, amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")}, func(context.Context, models.OrderPlacedEvent) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeued)
	})
}

func TestLowStockAlerter(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	handler := LowStockAlerter(zap.New(core))

	require.NoError(t, handler(context.Background(), models.OrderPlacedEvent{ProductID: 1, RemainingStock: 20}))
	assert.Equal(t, 0, logs.Len())

	require.NoError(t, handler(context.Background(), models.OrderPlacedEvent{ProductID: 2, ProductName: "Desk", RemainingStock: 1, LowStock: true}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Low stock after order", logs.All()[0].Message)
}
