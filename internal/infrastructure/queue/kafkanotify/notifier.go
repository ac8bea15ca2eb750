package kafkanotify

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Notifier writes each new shipment id to a Kafka topic, id as both key and
// value so partitioning stays stable per shipment.
type Notifier struct {
	writer *kafka.Writer
}

func NewNotifier(brokers []string, topic string) *Notifier {
	return &Notifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (n *Notifier) Publish(ctx context.Context, shipmentID string) error {
	err := n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(shipmentID),
		Value: []byte(shipmentID),
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka notifier: write: %w", err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
