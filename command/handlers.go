package command

import (
	"context"

	"github.com/goliatone/go-checkout/core"
	gocmd "github.com/goliatone/go-command"
)

type PaymentServiceProvider interface {
	GetPaymentService(ctx context.Context) (core.PaymentService, error)
}

type AutoAdvancer interface {
	StartAutoAdvancement(ctx context.Context, order core.Order) (core.ProgressSchedule, bool, error)
	StopAutoAdvancement(ctx context.Context, orderID string) error
}

type ServiceResetter interface {
	ResetServices()
}

type ConfigResetter interface {
	Reset()
}

// ProcessPaymentCommand stores the core.PaymentResult. A declined payment is
// a result, not an error.
type ProcessPaymentCommand struct {
	payments PaymentServiceProvider
}

func NewProcessPaymentCommand(payments PaymentServiceProvider) *ProcessPaymentCommand {
	return &ProcessPaymentCommand{payments: payments}
}

func (c *ProcessPaymentCommand) Execute(ctx context.Context, msg ProcessPaymentMessage) error {
	if c == nil || c.payments == nil {
		return commandDependencyError("command: payment service provider is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	service, err := c.payments.GetPaymentService(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, service.ProcessPayment(ctx, msg.Amount, msg.Method))
	return nil
}

type StartAutoAdvanceCommand struct {
	advancer AutoAdvancer
}

func NewStartAutoAdvanceCommand(advancer AutoAdvancer) *StartAutoAdvanceCommand {
	return &StartAutoAdvanceCommand{advancer: advancer}
}

func (c *StartAutoAdvanceCommand) Execute(ctx context.Context, msg StartAutoAdvanceMessage) error {
	if c == nil || c.advancer == nil {
		return commandDependencyError("command: auto advance engine is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	schedule, scheduled, err := c.advancer.StartAutoAdvancement(ctx, msg.Order)
	if err != nil {
		return err
	}
	storeResult(ctx, AutoAdvanceResult{Scheduled: scheduled, Schedule: schedule})
	return nil
}

type StopAutoAdvanceCommand struct {
	advancer AutoAdvancer
}

func NewStopAutoAdvanceCommand(advancer AutoAdvancer) *StopAutoAdvanceCommand {
	return &StopAutoAdvanceCommand{advancer: advancer}
}

func (c *StopAutoAdvanceCommand) Execute(ctx context.Context, msg StopAutoAdvanceMessage) error {
	if c == nil || c.advancer == nil {
		return commandDependencyError("command: auto advance engine is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: stop auto advance")
	}
	return c.advancer.StopAutoAdvancement(ctx, msg.OrderID)
}

type ResetServicesCommand struct {
	services ServiceResetter
	config   ConfigResetter
}

// NewResetServicesCommand accepts a nil config resetter; ResetConfig is then
// ignored.
func NewResetServicesCommand(services ServiceResetter, config ConfigResetter) *ResetServicesCommand {
	return &ResetServicesCommand{services: services, config: config}
}

func (c *ResetServicesCommand) Execute(_ context.Context, msg ResetServicesMessage) error {
	if c == nil || c.services == nil {
		return commandDependencyError("command: service factory is required")
	}
	if msg.ResetConfig && c.config != nil {
		c.config.Reset()
	}
	c.services.ResetServices()
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
