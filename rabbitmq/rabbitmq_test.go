package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-service/config"
	"canteen-service/models"
)

func TestNewPublishing(t *testing.T) {
	event := models.OrderEvent{
		Type:       models.EventOrderPlaced,
		OrderID:    12,
		CustomerID: 3,
		Status:     models.OrderStatusPending,
		Total:      13,
		Items:      2,
		Occurred:   time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}

	msg, err := newPublishing(event)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, uint8(defaultPriority), msg.Priority)
	assert.Equal(t, models.EventOrderPlaced, msg.Type)
	assert.NotEmpty(t, msg.MessageId)

	var decoded models.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event.OrderID, decoded.OrderID)
	assert.Equal(t, event.Total, decoded.Total)
	assert.True(t, event.Occurred.Equal(decoded.Occurred))
}

func TestNewPublishing_CancellationPriority(t *testing.T) {
	msg, err := newPublishing(models.OrderEvent{
		Type:    models.EventOrderStatusChanged,
		OrderID: 1,
		Status:  models.OrderStatusCancelled,
	})
	require.NoError(t, err)
	assert.Equal(t, uint8(cancelPriority), msg.Priority)
}

func TestDeadLetterExchangeName(t *testing.T) {
	r := &RabbitMQ{Cfg: &config.Config{DeadLetterQueue: "canteen.dead_letter"}}
	assert.Equal(t, "canteen.dead_letter_exchange", r.deadLetterExchange())
}
