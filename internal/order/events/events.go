// Package events carries payment-confirmation signals from the gateway
// webhook to the order ledger over Kafka, so webhook ingestion stays
// decoupled from database writes.
package events

// Topic is the kafka topic for payment confirmations.
const Topic = "payment-confirmations"

// PaymentConfirmed is published when the gateway reports a completed
// checkout session.
type PaymentConfirmed struct {
	OrderID         string `json:"order_id"`
	SessionID       string `json:"session_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	UserEmail       string `json:"user_email,omitempty"`
}
