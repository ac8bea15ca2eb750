package rabbit

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "shipping.events"
	routingKey   = "shipment.created"
	queueName    = "shipment.created.q"
)

// Notifier publishes each new shipment id as a persistent plain-text message.
// Exchange, queue, and binding are declared once at construction so the
// first publish cannot race provisioning.
type Notifier struct {
	ch *amqp.Channel
}

func NewNotifier(ch *amqp.Channel) (*Notifier, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("rabbit notifier: declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbit notifier: declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("rabbit notifier: queue bind: %w", err)
	}

	return &Notifier{ch: ch}, nil
}

func (n *Notifier) Publish(ctx context.Context, shipmentID string) error {
	err := n.ch.PublishWithContext(ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			Body:         []byte(shipmentID),
		},
	)
	if err != nil {
		return fmt.Errorf("rabbit notifier: publish: %w", err)
	}
	return nil
}
