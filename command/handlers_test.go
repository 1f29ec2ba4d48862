package command

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-checkout/core"
	gocmd "github.com/goliatone/go-command"
)

type stubPaymentService struct {
	core.PaymentService
	processed []float64
	result    core.PaymentResult
}

func (s *stubPaymentService) ProcessPayment(_ context.Context, amount float64, _ core.PaymentMethod) core.PaymentResult {
	s.processed = append(s.processed, amount)
	return s.result
}

type stubPayments struct {
	service core.PaymentService
	err     error
}

func (s stubPayments) GetPaymentService(context.Context) (core.PaymentService, error) {
	return s.service, s.err
}

type stubAdvancer struct {
	started []core.Order
	stopped []string
	err     error
}

func (s *stubAdvancer) StartAutoAdvancement(_ context.Context, order core.Order) (core.ProgressSchedule, bool, error) {
	s.started = append(s.started, order)
	if s.err != nil {
		return core.ProgressSchedule{}, false, s.err
	}
	return core.ProgressSchedule{OrderID: order.ID, NextStatus: core.OrderStatusConfirmed}, true, nil
}

func (s *stubAdvancer) StopAutoAdvancement(_ context.Context, orderID string) error {
	s.stopped = append(s.stopped, orderID)
	return s.err
}

type stubResetter struct {
	services int
	config   int
}

func (s *stubResetter) ResetServices() { s.services++ }

func (s *stubResetter) Reset() { s.config++ }

func demoCard() core.PaymentMethod {
	return core.PaymentMethod{
		Type:           core.PaymentMethodDemoCard,
		CardNumber:     "4242424242424242",
		ExpiryDate:     "12/40",
		CVV:            "123",
		CardholderName: "Demo Buyer",
	}
}

func TestProcessPaymentCommand_StoresResult(t *testing.T) {
	service := &stubPaymentService{result: core.PaymentResult{Success: true, PaymentID: "demo_pay_1"}}
	cmd := NewProcessPaymentCommand(stubPayments{service: service})
	collector := gocmd.NewResult[core.PaymentResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, ProcessPaymentMessage{Amount: 49.99, Method: demoCard()}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	result, ok := collector.Load()
	if !ok || result.PaymentID != "demo_pay_1" {
		t.Fatalf("expected stored payment result, got %#v", result)
	}
	if len(service.processed) != 1 || service.processed[0] != 49.99 {
		t.Fatalf("unexpected processed amounts %v", service.processed)
	}
}

func TestProcessPaymentCommand_DeclineIsNotAnError(t *testing.T) {
	service := &stubPaymentService{result: core.PaymentResult{Success: false, Error: "Card declined"}}
	cmd := NewProcessPaymentCommand(stubPayments{service: service})
	collector := gocmd.NewResult[core.PaymentResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, ProcessPaymentMessage{Amount: 10, Method: demoCard()}); err != nil {
		t.Fatalf("expected decline to be a value, got %v", err)
	}
	if result, _ := collector.Load(); result.Success || result.Error != "Card declined" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestProcessPaymentCommand_PropagatesConstructionError(t *testing.T) {
	constructionErr := core.NewUnsupportedProviderError(core.CapabilityPayment, "sandbox")
	cmd := NewProcessPaymentCommand(stubPayments{err: constructionErr})
	err := cmd.Execute(context.Background(), ProcessPaymentMessage{Amount: 10, Method: demoCard()})
	if !errors.Is(err, constructionErr) {
		t.Fatalf("expected construction error, got %v", err)
	}
}

func TestProcessPaymentCommand_RejectsInvalidEnvelope(t *testing.T) {
	service := &stubPaymentService{}
	cmd := NewProcessPaymentCommand(stubPayments{service: service})
	if err := cmd.Execute(context.Background(), ProcessPaymentMessage{Amount: 0, Method: demoCard()}); err == nil {
		t.Fatalf("expected zero amount to fail")
	}
	if err := cmd.Execute(context.Background(), ProcessPaymentMessage{Amount: 5}); err == nil {
		t.Fatalf("expected missing method type to fail")
	}
	if len(service.processed) != 0 {
		t.Fatalf("expected payment service to be skipped")
	}
}

func TestAutoAdvanceCommands_DelegateToEngine(t *testing.T) {
	advancer := &stubAdvancer{}
	start := NewStartAutoAdvanceCommand(advancer)
	collector := gocmd.NewResult[AutoAdvanceResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	order := core.Order{ID: "ord_1", Status: core.OrderStatusPending, PaymentMethod: "demo_card"}
	if err := start.Execute(ctx, StartAutoAdvanceMessage{Order: order}); err != nil {
		t.Fatalf("start: %v", err)
	}
	result, ok := collector.Load()
	if !ok || !result.Scheduled || result.Schedule.OrderID != "ord_1" {
		t.Fatalf("unexpected start result %#v", result)
	}

	stop := NewStopAutoAdvanceCommand(advancer)
	if err := stop.Execute(context.Background(), StopAutoAdvanceMessage{OrderID: "ord_1"}); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(advancer.stopped) != 1 || advancer.stopped[0] != "ord_1" {
		t.Fatalf("unexpected stop calls %v", advancer.stopped)
	}
	if err := stop.Execute(context.Background(), StopAutoAdvanceMessage{}); err == nil {
		t.Fatalf("expected missing order id to fail")
	}
	if err := start.Execute(context.Background(), StartAutoAdvanceMessage{Order: core.Order{ID: "ord_2"}}); err == nil {
		t.Fatalf("expected missing status to fail")
	}
}

func TestResetServicesCommand(t *testing.T) {
	resetter := &stubResetter{}
	cmd := NewResetServicesCommand(resetter, resetter)
	if err := cmd.Execute(context.Background(), ResetServicesMessage{}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if resetter.services != 1 || resetter.config != 0 {
		t.Fatalf("expected service reset only, got %+v", resetter)
	}
	if err := cmd.Execute(context.Background(), ResetServicesMessage{ResetConfig: true}); err != nil {
		t.Fatalf("reset with config: %v", err)
	}
	if resetter.services != 2 || resetter.config != 1 {
		t.Fatalf("expected config reset too, got %+v", resetter)
	}
}
