package services

import "context"

// CheckoutSessionRequest describes the hosted checkout session we ask the
// provider to create. Amount is in major currency units; the provider
// adapter converts to whatever the wire format needs.
type CheckoutSessionRequest struct {
	Amount      float64
	Currency    string
	ProductName string
	Quantity    int
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is a provider-issued, time-bounded authorization for a
// single payment attempt.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutStatus is a point-in-time read of a session. PaymentStatus is
// the provider's verdict on the money ("paid", "unpaid"); ProviderStatus
// is the session window state ("open", "complete", "expired", ...).
type CheckoutStatus struct {
	PaymentStatus  string
	ProviderStatus string
}

// CheckoutProvider is the boundary to the external payment provider.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	GetCheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatus, error)
}
