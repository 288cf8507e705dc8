package models

import "time"

// Payment event types published to the bot over Kafka.
const (
	EventCheckoutSessionCreated = "checkout_session_created"
	EventPaymentSucceeded       = "payment_succeeded"
	EventPaymentExpired         = "payment_expired"
	EventPaymentCanceled        = "payment_canceled"
	EventFulfillmentConflict    = "fulfillment_conflict"
)

// PaymentEvent notifies the bot process about checkout lifecycle changes.
// On payment_succeeded the bot delivers the product to the buyer (DM or
// shop channel fallback).
type PaymentEvent struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id"`
	SessionID     string    `json:"session_id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	RequesterID   string    `json:"discord_user_id"`
	Quantity      int       `json:"quantity"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
}
