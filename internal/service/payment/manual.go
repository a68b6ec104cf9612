// internal/service/payment/manual.go
package payment

import (
	"context"
	"fmt"
)

// ManualGateway records payments settled outside the platform (bank
// transfer, cash at the registrar). It never fails; an admin activates the
// subscription once the money actually arrives.
type ManualGateway struct{}

func NewManualGateway() *ManualGateway {
	return &ManualGateway{}
}

func (g *ManualGateway) CreatePayment(_ context.Context, req *Request) (*Result, error) {
	return &Result{
		TransactionID: fmt.Sprintf("manual-%s", req.Reference),
		Provider:      "manual",
	}, nil
}
