package payment

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-checkout/core"
)

func TestDemoAutoFailCardsAlwaysFail(t *testing.T) {
	cfg := demoConfig()
	cfg.SuccessRate = 1
	clock := &instantClock{now: testNow}
	service := NewDemoService(cfg, WithClock(clock), WithRandom(fixedRandom{sample: 0}))

	for _, card := range cfg.FailCards {
		result := service.ProcessPayment(context.Background(), 49.99, validMethod(card))
		if result.Success {
			t.Fatalf("expected %s to fail", card)
		}
		if result.Error == "" {
			t.Fatalf("expected decline message for %s", card)
		}
		if result.Receipt != nil {
			t.Fatalf("expected no receipt for declined card")
		}
	}

	cfg.EnableFailures = false
	service = NewDemoService(cfg, WithClock(clock))
	result := service.ProcessPayment(context.Background(), 10, validMethod("4000000000000002"))
	if result.Success || result.Error != "Your card was declined." {
		t.Fatalf("expected auto-fail even with failures disabled, got %#v", result)
	}
}

func TestDemoSuccessRateOneSucceedsWithinDelay(t *testing.T) {
	cfg := demoConfig()
	cfg.SuccessRate = 1
	cfg.ProcessingDelay = 1500
	clock := &instantClock{now: testNow}
	service := NewDemoService(cfg, WithClock(clock), WithRandom(fixedRandom{sample: 0.999}))

	result := service.ProcessPayment(context.Background(), 25, validMethod("4242424242424242"))
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	waits := clock.recorded()
	if len(waits) != 1 || waits[0] != 1500*time.Millisecond {
		t.Fatalf("expected a single 1500ms delay, got %v", waits)
	}
	receipt := result.Receipt
	if receipt == nil {
		t.Fatalf("expected receipt")
	}
	if !receipt.IsDemoTransaction || receipt.Brand != BrandVisa || receipt.Last4 != "4242" {
		t.Fatalf("unexpected receipt %#v", receipt)
	}
	if receipt.Amount != 25 || receipt.PaymentID != result.PaymentID {
		t.Fatalf("expected receipt to mirror payment, got %#v", receipt)
	}
	if !strings.HasPrefix(result.TransactionID, "txn_demo_") {
		t.Fatalf("unexpected transaction id %q", result.TransactionID)
	}
}

func TestDemoRandomFailuresUseCannedMessages(t *testing.T) {
	cfg := demoConfig()
	cfg.SuccessRate = 0.5
	service := NewDemoService(cfg, WithClock(&instantClock{now: testNow}), WithRandom(fixedRandom{sample: 0.75, index: 3}))

	result := service.ProcessPayment(context.Background(), 5, validMethod("5555555555554444"))
	if result.Success {
		t.Fatalf("expected sampled failure")
	}
	if result.Error != DeclineMessages[3] {
		t.Fatalf("expected canned message, got %q", result.Error)
	}

	cfg.EnableFailures = false
	service = NewDemoService(cfg, WithClock(&instantClock{now: testNow}), WithRandom(fixedRandom{sample: 0.99}))
	if result := service.ProcessPayment(context.Background(), 5, validMethod("5555555555554444")); !result.Success {
		t.Fatalf("expected success with failures disabled, got %q", result.Error)
	}
}

func TestDemoRejectsInvalidInputBeforeDelay(t *testing.T) {
	clock := &instantClock{now: testNow}
	service := NewDemoService(demoConfig(), WithClock(clock))

	result := service.ProcessPayment(context.Background(), 10, validMethod("4111111111111112"))
	if result.Success || result.Error != "Invalid card number" {
		t.Fatalf("expected card validation failure, got %#v", result)
	}
	result = service.ProcessPayment(context.Background(), 0, validMethod("4242424242424242"))
	if result.Success {
		t.Fatalf("expected zero amount to fail")
	}
	if len(clock.recorded()) != 0 {
		t.Fatalf("expected no simulated delay for rejected input")
	}
}

func TestDemoDelayHonorsCancellation(t *testing.T) {
	service := NewDemoService(demoConfig(), WithClock(blockingClock{now: testNow}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	result := service.ProcessPayment(ctx, 10, validMethod("4242424242424242"))
	if result.Success || !strings.HasPrefix(result.Error, "Payment cancelled") {
		t.Fatalf("expected cancellation failure, got %#v", result)
	}
}

func TestDemoPaymentIntentLifecycle(t *testing.T) {
	cfg := demoConfig()
	cfg.EnableFailures = false
	service := NewDemoService(cfg, WithClock(&instantClock{now: testNow}), WithRandom(fixedRandom{index: 1}))

	intent, err := service.CreatePaymentIntent(context.Background(), 42.5, "EUR")
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	wantPrefix := "pi_demo_" + strconv.FormatInt(testNow.UnixMilli(), 10) + "_"
	if !strings.HasPrefix(intent.ID, wantPrefix) || len(intent.ID) != len(wantPrefix)+9 {
		t.Fatalf("unexpected intent id %q", intent.ID)
	}
	if intent.Status != core.IntentStatusRequiresPaymentMethod || intent.Currency != "eur" {
		t.Fatalf("unexpected intent %#v", intent)
	}

	result := service.ConfirmPayment(context.Background(), intent.ID, validMethod("4242424242424242"))
	if !result.Success || result.PaymentID != intent.ID {
		t.Fatalf("expected confirmation, got %#v", result)
	}
	if result.Receipt.Amount != 42.5 || result.Receipt.Currency != "EUR" {
		t.Fatalf("expected receipt to carry intent amount, got %#v", result.Receipt)
	}
	if again := service.ConfirmPayment(context.Background(), intent.ID, validMethod("4242424242424242")); again.Success {
		t.Fatalf("expected second confirmation to fail")
	}
	if unknown := service.ConfirmPayment(context.Background(), "pi_demo_missing", validMethod("4242424242424242")); unknown.Success {
		t.Fatalf("expected unknown intent to fail")
	}
}

func TestDemoIntrospection(t *testing.T) {
	service := NewDemoService(demoConfig())
	if !service.IsDemo() || service.EngineName() != EngineDemo {
		t.Fatalf("unexpected engine identity")
	}
	cards := service.TestCards()
	if len(cards.Success) != 3 || len(cards.Fail) != 3 {
		t.Fatalf("unexpected test cards %#v", cards)
	}
	cards.Fail[0] = "changed"
	if service.TestCards().Fail[0] == "changed" {
		t.Fatalf("expected test cards to be copied")
	}

	scenarios := service.Scenarios()
	if len(scenarios) != 6 {
		t.Fatalf("expected six scenarios, got %d", len(scenarios))
	}
	succeeding := 0
	for _, scenario := range scenarios {
		if scenario.Succeeds {
			succeeding++
		}
		if !ValidCardNumber(scenario.CardNumber) {
			t.Fatalf("scenario %q uses an invalid card", scenario.Name)
		}
	}
	if succeeding != 3 {
		t.Fatalf("expected three success scenarios, got %d", succeeding)
	}

	stats := service.Stats()
	if stats.SuccessRate != core.DefaultDemoSuccessRate || stats.AverageDelayMS != core.DefaultDemoProcessingDelay {
		t.Fatalf("unexpected stats %#v", stats)
	}
	if stats.TotalTransactions != 0 {
		t.Fatalf("expected transaction counter to stay at zero")
	}

	methods := service.GetPaymentMethods()
	if len(methods) != 1 || !methods[0].Demo {
		t.Fatalf("unexpected demo payment methods %#v", methods)
	}
}

func TestDemoRefund(t *testing.T) {
	service := NewDemoService(demoConfig())
	if refund := service.RefundPayment(context.Background(), "pay_demo_1", 5); !refund.Success || !strings.HasPrefix(refund.RefundID, "re_demo_") {
		t.Fatalf("unexpected refund %#v", refund)
	}
	if refund := service.RefundPayment(context.Background(), "", 5); refund.Success {
		t.Fatalf("expected refund without payment id to fail")
	}
}

// gateClock holds every wait until release is closed.
type gateClock struct {
	now     time.Time
	waiting chan struct{}
	release chan time.Time
}

func (c *gateClock) Now() time.Time { return c.now }

func (c *gateClock) After(time.Duration) <-chan time.Time {
	c.waiting <- struct{}{}
	return c.release
}

func TestDemoConcurrentConfirmChargesOnce(t *testing.T) {
	cfg := demoConfig()
	cfg.EnableFailures = false
	cfg.ProcessingDelay = 1000
	clock := &gateClock{now: testNow, waiting: make(chan struct{}, 1), release: make(chan time.Time)}
	service := NewDemoService(cfg, WithClock(clock), WithRandom(fixedRandom{}))

	intent, err := service.CreatePaymentIntent(context.Background(), 10, "usd")
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	first := make(chan core.PaymentResult, 1)
	go func() {
		first <- service.ConfirmPayment(context.Background(), intent.ID, validMethod("4242424242424242"))
	}()
	<-clock.waiting

	second := service.ConfirmPayment(context.Background(), intent.ID, validMethod("4242424242424242"))
	if second.Success || second.Error != "Payment intent is already being confirmed" {
		t.Fatalf("expected in-flight confirmation to be rejected, got %#v", second)
	}

	close(clock.release)
	if result := <-first; !result.Success {
		t.Fatalf("expected first confirmation to succeed, got %q", result.Error)
	}
	if again := service.ConfirmPayment(context.Background(), intent.ID, validMethod("4242424242424242")); again.Success {
		t.Fatalf("expected confirmed intent to stay confirmed once")
	}
}
