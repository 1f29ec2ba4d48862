package command

import (
	"math"
	"strings"

	"github.com/goliatone/go-checkout/core"
)

const (
	TypeProcessPayment   = "checkout.command.payment.process"
	TypeStartAutoAdvance = "checkout.command.auto_advance.start"
	TypeStopAutoAdvance  = "checkout.command.auto_advance.stop"
	TypeResetServices    = "checkout.command.services.reset"
)

type ProcessPaymentMessage struct {
	Amount float64
	Method core.PaymentMethod
}

func (ProcessPaymentMessage) Type() string { return TypeProcessPayment }

// Validate only checks the envelope; card details are validated by the
// payment engine, which reports them as a failed PaymentResult.
func (m ProcessPaymentMessage) Validate() error {
	if math.IsNaN(m.Amount) || math.IsInf(m.Amount, 0) || m.Amount <= 0 {
		return commandValidationError("amount", "amount must be greater than zero")
	}
	if strings.TrimSpace(string(m.Method.Type)) == "" {
		return commandValidationError("method.type", "payment method type is required")
	}
	return nil
}

type StartAutoAdvanceMessage struct {
	Order core.Order
}

func (StartAutoAdvanceMessage) Type() string { return TypeStartAutoAdvance }

func (m StartAutoAdvanceMessage) Validate() error {
	if strings.TrimSpace(m.Order.ID) == "" {
		return commandValidationError("order.id", "order id is required")
	}
	if strings.TrimSpace(string(m.Order.Status)) == "" {
		return commandValidationError("order.status", "order status is required")
	}
	return nil
}

type StopAutoAdvanceMessage struct {
	OrderID string
}

func (StopAutoAdvanceMessage) Type() string { return TypeStopAutoAdvance }

func (m StopAutoAdvanceMessage) Validate() error {
	if strings.TrimSpace(m.OrderID) == "" {
		return commandValidationError("order_id", "order id is required")
	}
	return nil
}

// ResetServicesMessage drops the memoized providers. ResetConfig also
// forces the configuration to be resolved again on next use.
type ResetServicesMessage struct {
	ResetConfig bool
}

func (ResetServicesMessage) Type() string { return TypeResetServices }

// AutoAdvanceResult is stored by StartAutoAdvanceCommand.
type AutoAdvanceResult struct {
	Scheduled bool
	Schedule  core.ProgressSchedule
}
