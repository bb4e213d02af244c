package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/notification"
)

type noopPublisher struct{}

// NoopPublisher discards every event. Used when no broker is configured.
func NoopPublisher() notification.Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, []*notification.Notification) error { return nil }
func (noopPublisher) Close() error                                              { return nil }

type kafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher publishes stored notifications to topic, keyed by recipient.
func NewKafkaPublisher(brokers []string, topic string) notification.Publisher {
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, notifications []*notification.Notification) error {
	msgs := make([]kafka.Message, 0, len(notifications))
	for _, n := range notifications {
		msg, err := newKafkaMessage(p.topic, n)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

func newKafkaMessage(topic string, n *notification.Notification) (kafka.Message, error) {
	payload, err := json.Marshal(notification.ToResponse(n))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal notification %s: %w", n.ID, err)
	}

	return kafka.Message{
		Topic: topic,
		Key:   []byte(n.RecipientID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(n.Type)},
		},
	}, nil
}
