package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/just-smsm/storefront/internal/order"
)

// Ledger is the slice of the order ledger the consumer drives.
type Ledger interface {
	MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) error
}

type Consumer struct {
	ledger    Ledger
	reader    *kafka.Reader
	retryWait time.Duration
}

func NewConsumer(ledger Ledger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  "order-ledger",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{ledger: ledger, reader: reader, retryWait: time.Second}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		// An unreachable broker fails ReadMessage immediately; without a
		// pause the Run loop would spin.
		c.pause(ctx)
		return
	}

	if err := c.apply(ctx, m.Value); err != nil {
		log.Printf("failed to apply payment confirmation: %v", err)
	}
}

func (c *Consumer) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.retryWait):
	}
}

// apply transitions the referenced order to Paid. Confirmations for orders
// that are already Paid (redelivery) are skipped, not errors.
func (c *Consumer) apply(ctx context.Context, payload []byte) error {
	var event PaymentConfirmed
	if err := json.Unmarshal(payload, &event); err != nil {
		return err
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return err
	}

	errMark := c.ledger.MarkPaid(ctx, orderID, event.PaymentIntentID)
	if errors.Is(errMark, order.ErrIllegalTransition) {
		log.Printf("confirmation for order %s ignored: %v", event.OrderID, errMark)
		return nil
	}
	if errMark != nil {
		return errMark
	}

	log.Printf("order %s marked paid (intent %s)", event.OrderID, event.PaymentIntentID)
	return nil
}
