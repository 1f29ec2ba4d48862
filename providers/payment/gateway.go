package payment

import (
	"context"
	"fmt"

	"github.com/goliatone/go-checkout/core"
)

// Charge is the gateway's view of a confirmed payment.
type Charge struct {
	ID            string
	TransactionID string
	Status        string
	Brand         string
	Last4         string
}

// Gateway is the network client a ProductionService delegates to. Amounts are
// in minor currency units.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (core.PaymentIntent, error)
	Confirm(ctx context.Context, intentID string, method core.PaymentMethod) (Charge, error)
	Refund(ctx context.Context, paymentID string, amount int64) (string, error)
}

// UnconfiguredGateway is used until a real gateway client is supplied.
type UnconfiguredGateway struct{}

func (UnconfiguredGateway) CreateIntent(context.Context, int64, string) (core.PaymentIntent, error) {
	return core.PaymentIntent{}, fmt.Errorf("payment: create intent: %w", core.ErrNotConfigured)
}

func (UnconfiguredGateway) Confirm(context.Context, string, core.PaymentMethod) (Charge, error) {
	return Charge{}, fmt.Errorf("payment: confirm intent: %w", core.ErrNotConfigured)
}

func (UnconfiguredGateway) Refund(context.Context, string, int64) (string, error) {
	return "", fmt.Errorf("payment: refund: %w", core.ErrNotConfigured)
}

var _ Gateway = UnconfiguredGateway{}
