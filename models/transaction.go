package models

import (
	"time"
)

// Payment statuses a transaction moves through. The set mirrors what the
// checkout provider can report plus our own bookkeeping states.
const (
	PaymentStatusCreated  = "created"
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusExpired  = "expired"
	PaymentStatusCanceled = "canceled"
	PaymentStatusFailed   = "failed"
)

// TerminalStatuses are payment statuses after which no further transition
// is expected. A transaction in one of these never moves again.
var TerminalStatuses = map[string]bool{
	PaymentStatusPaid:     true,
	PaymentStatusExpired:  true,
	PaymentStatusCanceled: true,
	PaymentStatusFailed:   true,
}

// IsTerminalStatus reports whether status ends the payment lifecycle.
func IsTerminalStatus(status string) bool {
	return TerminalStatuses[status]
}

// CanTransition reports whether a transaction may move from one payment
// status to another. Transitions are forward-only: terminal states never
// regress and never swap between each other. Re-applying the current
// status is allowed so concurrent observers of the same provider read
// converge instead of erroring.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	if IsTerminalStatus(from) {
		return false
	}
	switch from {
	case PaymentStatusCreated:
		return to == PaymentStatusPending || IsTerminalStatus(to)
	case PaymentStatusPending:
		return IsTerminalStatus(to)
	}
	return false
}

// Transaction is the durable ledger record of a single checkout attempt.
// Product name and unit price are snapshotted at purchase time so the
// record stays stable if the catalog changes mid-flight. Rows are never
// deleted; the ledger is an append-mostly audit trail.
type Transaction struct {
	ID             string    `bson:"id" json:"id"`
	SessionID      string    `bson:"session_id" json:"session_id"`
	ProductID      string    `bson:"product_id" json:"product_id"`
	ProductName    string    `bson:"product_name" json:"product_name"`
	UnitPrice      float64   `bson:"unit_price" json:"unit_price"`
	Quantity       int       `bson:"quantity" json:"quantity"`
	Amount         float64   `bson:"amount" json:"amount"`
	Currency       string    `bson:"currency" json:"currency"`
	RequesterID    string    `bson:"discord_user_id" json:"discord_user_id"`
	PaymentStatus  string    `bson:"payment_status" json:"payment_status"`
	ProviderStatus string    `bson:"provider_status" json:"provider_status"`
	Delivered      bool      `bson:"delivered" json:"delivered"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// CheckoutRequest is the purchase request coming from the dashboard.
type CheckoutRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	RequesterID string `json:"discord_user_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"omitempty,min=1"`
	OriginURL   string `json:"origin_url" binding:"required,url"`
}

// CheckoutResponse is returned to the dashboard so it can redirect the
// buyer to the provider's hosted payment page.
type CheckoutResponse struct {
	RedirectURL   string `json:"url"`
	SessionID     string `json:"session_id"`
	TransactionID string `json:"transaction_id"`
}

// StatusSnapshot is the on-demand view of a transaction's reconciliation
// state, shaped the way the dashboard consumes it.
type StatusSnapshot struct {
	PaymentStatus  string `json:"payment_status"`
	ProviderStatus string `json:"provider_status"`
	Delivered      bool   `json:"delivered"`
	TimedOut       bool   `json:"timed_out,omitempty"`
}
