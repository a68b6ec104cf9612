// internal/service/payment/gateway.go
package payment

import "context"

// Request describes a payment to initiate for a paid subscription. The
// subscription id travels as correlation metadata so the provider callback
// can find its way back.
type Request struct {
	UserID         int64
	SubscriptionID int64
	Reference      string
	Amount         float64
	Currency       string
	Metadata       map[string]string
}

// Result is what the provider hands back on successful initiation.
type Result struct {
	TransactionID string
	Provider      string
	ClientSecret  string
}

// Gateway initiates payments with an external provider. Initiation failure
// must never activate the subscription; callers keep it pending and let the
// user retry.
type Gateway interface {
	CreatePayment(ctx context.Context, req *Request) (*Result, error)
}
