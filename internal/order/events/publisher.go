package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, event PaymentConfirmed) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payment confirmation: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order_id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("payment.confirmed")},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
