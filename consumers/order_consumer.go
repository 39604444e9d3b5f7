package consumers

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"canteen-service/config"
	"canteen-service/models"
)

// StartOrderConsumer feeds order events to the kitchen log. It returns once
// the consumers are registered; delivery loops end when the channel closes.
func StartOrderConsumer(ch *amqp.Channel, cfg *config.Config) error {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"canteen-kitchen", // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register order consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"canteen-kitchen-dlq", // consumer tag
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,
	)
	if err != nil {
		log.WithError(err).Warn("Failed to register dead-letter consumer")
		return nil
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
	return nil
}

func processOrderMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Recovered from panic in message processing")
			_ = msg.Nack(false, false)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.OrderID <= 0 {
		log.WithField("body", string(msg.Body)).Warn("Invalid order event, dead-lettering")
		// reject without requeue so the broker routes it to the dead-letter queue
		if err := msg.Nack(false, false); err != nil {
			log.WithError(err).Error("Failed to nack message")
		}
		return
	}

	switch event.Type {
	case models.EventOrderPlaced:
		handleOrderPlaced(event)
	case models.EventOrderStatusChanged:
		handleStatusChanged(event)
	default:
		log.WithField("type", event.Type).Warn("Unknown order event type")
	}

	if err := msg.Ack(false); err != nil {
		log.WithError(err).Error("Failed to ack message")
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.WithFields(log.Fields{
		"message_id": msg.MessageId,
		"body":       string(msg.Body),
	}).Warn("Received dead letter")
	if err := msg.Ack(false); err != nil {
		log.WithError(err).Error("Failed to ack dead letter")
	}
}

func handleOrderPlaced(event models.OrderEvent) {
	log.WithFields(log.Fields{
		"order_id":    event.OrderID,
		"customer_id": event.CustomerID,
		"lines":       event.Items,
		"total":       event.Total,
	}).Info("Kitchen: new order")
}

func handleStatusChanged(event models.OrderEvent) {
	entry := log.WithFields(log.Fields{
		"order_id": event.OrderID,
		"status":   event.Status,
	})
	if event.Status == models.OrderStatusCancelled {
		entry.Warn("Kitchen: order cancelled")
		return
	}
	entry.Info("Kitchen: order status changed")
}
