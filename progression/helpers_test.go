package progression

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-checkout/core"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type clockWaiter struct {
	at time.Time
	ch chan time.Time
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []clockWaiter
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, clockWaiter{at: c.now.Add(d), ch: ch})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	pending := c.waiters[:0]
	for _, waiter := range c.waiters {
		if !waiter.at.After(c.now) {
			waiter.ch <- c.now
			continue
		}
		pending = append(pending, waiter)
	}
	c.waiters = pending
}

func (c *fakeClock) waitForWaiters(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		count := len(c.waiters)
		c.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d clock waiters", n)
}

// recordingUpdater applies every update to an in-memory order table.
type recordingUpdater struct {
	mu      sync.Mutex
	calls   []core.StatusUpdate
	orders  map[string]core.Order
	err     error
	applied chan core.StatusUpdate
	hook    func(orderID string)
}

func newRecordingUpdater() *recordingUpdater {
	return &recordingUpdater{
		orders:  map[string]core.Order{},
		applied: make(chan core.StatusUpdate, 16),
	}
}

func (u *recordingUpdater) UpdateOrderStatus(_ context.Context, orderID string, update core.StatusUpdate) (core.Order, error) {
	if u.hook != nil {
		u.hook(orderID)
	}
	u.mu.Lock()
	u.calls = append(u.calls, update)
	if u.err != nil {
		u.mu.Unlock()
		return core.Order{}, u.err
	}
	order := u.orders[orderID]
	order.ID = orderID
	order.Status = update.Status
	u.orders[orderID] = order
	u.mu.Unlock()
	u.applied <- update
	return order, nil
}

func (u *recordingUpdater) statuses() []core.OrderStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]core.OrderStatus, 0, len(u.calls))
	for _, call := range u.calls {
		out = append(out, call.Status)
	}
	return out
}

type recordingObserver struct {
	mu      sync.Mutex
	changes []core.StatusChange
}

func (o *recordingObserver) OnStatusChange(_ context.Context, change core.StatusChange) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, change)
	return errors.New("observer errors are only logged")
}

func (o *recordingObserver) recorded() []core.StatusChange {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]core.StatusChange(nil), o.changes...)
}

func demoConfig() core.DemoPaymentConfig {
	cfg := core.DefaultConfig(core.ModeDemo).Payment.Demo
	cfg.AutoAdvanceOrders = true
	cfg.OrderAdvanceDelay = 30000
	return cfg
}

func demoOrder(id string, status core.OrderStatus) core.Order {
	return core.Order{ID: id, Status: status, PaymentMethod: string(core.PaymentMethodDemoCard)}
}
