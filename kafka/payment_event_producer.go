package kafka

import (
	"context"
	"encoding/json"

	"github.com/Majorzinnn/botDC/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher is implemented by the Kafka producer and by test fakes.
type EventPublisher interface {
	SendPaymentEvent(event models.PaymentEvent) error
}

// PaymentEventProducer publishes payment lifecycle events to the topic the
// bot process consumes (session created, paid, expired, ...).
type PaymentEventProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewPaymentEventProducer(brokers []string, topic string) *PaymentEventProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	zap.L().Info("Payment event producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &PaymentEventProducer{writer: w, topic: topic}
}

func (p *PaymentEventProducer) SendPaymentEvent(event models.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: data,
	}

	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		zap.L().Warn("Failed to send payment event",
			zap.String("event_type", event.Type),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
		return err
	}

	zap.L().Info("Payment event published",
		zap.String("event_type", event.Type),
		zap.String("session_id", event.SessionID),
	)
	return nil
}

func (p *PaymentEventProducer) Close() {
	_ = p.writer.Close()
	zap.L().Info("Kafka producer closed")
}
