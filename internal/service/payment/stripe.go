// internal/service/payment/stripe.go
package payment

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.uber.org/zap"
)

type StripeGateway struct {
	logger *zap.Logger
}

// NewStripeGateway configures the stripe client with the given secret key.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{logger: logger}
}

// CreatePayment opens a PaymentIntent for the subscription amount. A fresh
// idempotency key guards against double submission on retries at the HTTP
// layer.
func (g *StripeGateway) CreatePayment(ctx context.Context, req *Request) (*Result, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())
	params.AddMetadata("subscription_id", strconv.FormatInt(req.SubscriptionID, 10))
	params.AddMetadata("subscription_reference", req.Reference)
	params.AddMetadata("user_id", strconv.FormatInt(req.UserID, 10))
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error("stripe payment intent creation failed",
			zap.Int64("subscription_id", req.SubscriptionID),
			zap.Float64("amount", req.Amount),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.logger.Info("stripe payment intent created",
		zap.Int64("subscription_id", req.SubscriptionID),
		zap.String("payment_intent_id", pi.ID),
	)

	return &Result{
		TransactionID: pi.ID,
		Provider:      "stripe",
		ClientSecret:  pi.ClientSecret,
	}, nil
}

// toMinorUnits converts a decimal amount to the smallest currency unit.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
