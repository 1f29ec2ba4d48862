package payment

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/core"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// instantClock fires every wait immediately and records what was asked for.
type instantClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

func (c *instantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *instantClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waits = append(c.waits, d)
	ch := make(chan time.Time, 1)
	ch <- c.now.Add(d)
	return ch
}

func (c *instantClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// blockingClock never fires.
type blockingClock struct{ now time.Time }

func (c blockingClock) Now() time.Time {
	return c.now
}

func (c blockingClock) After(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

type fixedRandom struct {
	sample float64
	index  int
}

func (r fixedRandom) Float64() float64 { return r.sample }

func (r fixedRandom) IntN(n int) int {
	if r.index >= n {
		return n - 1
	}
	return r.index
}

func validMethod(card string) core.PaymentMethod {
	return core.PaymentMethod{
		Type:           core.PaymentMethodDemoCard,
		CardNumber:     card,
		ExpiryDate:     "12/29",
		CVV:            "123",
		CardholderName: "Ada Lovelace",
	}
}

func demoConfig() core.DemoPaymentConfig {
	return core.DefaultConfig(core.ModeDemo).Payment.Demo
}

type stubGateway struct {
	mu        sync.Mutex
	intents   []int64
	confirmed []string
	charge    Charge
	err       error
}

func (g *stubGateway) CreateIntent(_ context.Context, amount int64, currency string) (core.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return core.PaymentIntent{}, g.err
	}
	g.intents = append(g.intents, amount)
	return core.PaymentIntent{
		ID:       "pi_live_1",
		Amount:   float64(amount) / 100,
		Currency: currency,
		Status:   core.IntentStatusRequiresPaymentMethod,
	}, nil
}

func (g *stubGateway) Confirm(_ context.Context, intentID string, _ core.PaymentMethod) (Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return Charge{}, g.err
	}
	g.confirmed = append(g.confirmed, intentID)
	return g.charge, nil
}

func (g *stubGateway) Refund(_ context.Context, paymentID string, _ int64) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "re_" + paymentID, nil
}

type staticSource struct {
	mu    sync.Mutex
	cfg   core.AppConfig
	calls int
}

func (s *staticSource) Get(context.Context) (core.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.cfg.Clone(), nil
}
