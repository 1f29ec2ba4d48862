package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/progression"
)

type recordingUpdater struct {
	mu      sync.Mutex
	updates []core.StatusUpdate
	err     error
}

func (u *recordingUpdater) UpdateOrderStatus(_ context.Context, orderID string, update core.StatusUpdate) (core.Order, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return core.Order{}, u.err
	}
	u.updates = append(u.updates, update)
	return core.Order{ID: orderID, Status: update.Status}, nil
}

func (u *recordingUpdater) statuses() []core.OrderStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]core.OrderStatus, 0, len(u.updates))
	for _, update := range u.updates {
		out = append(out, update.Status)
	}
	return out
}

func runtimeEnv(t *testing.T, extra map[string]string) map[string]string {
	t.Helper()
	env := map[string]string{
		"DEMO_PROCESSING_DELAY":    "0",
		"DEMO_ORDER_ADVANCE_DELAY": "0",
		"STORAGE_LOCAL_PATH":       t.TempDir(),
	}
	for key, value := range extra {
		env[key] = value
	}
	return env
}

func newTestRuntime(t *testing.T, updater core.StatusUpdater, extra map[string]string) *Runtime {
	t.Helper()
	clock := fixedClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	runtime, err := NewRuntime(context.Background(), updater,
		WithConfigOptions(WithEnvMap(runtimeEnv(t, extra))),
		WithRuntimeClock(clock),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	return runtime
}

func TestNewRuntimeResolvesConfig(t *testing.T) {
	runtime := newTestRuntime(t, &recordingUpdater{}, map[string]string{"DEMO_SUCCESS_RATE": "0.9"})
	cfg, err := runtime.Config.Get(context.Background())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Mode != core.ModeDemo || cfg.Payment.Demo.SuccessRate != 0.9 {
		t.Fatalf("unexpected config %#v", cfg.Payment.Demo)
	}
	if !runtime.Progression.Enabled() {
		t.Fatalf("expected auto advance enabled by default in demo mode")
	}
	if runtime.Facade() == nil {
		t.Fatalf("expected facade")
	}
}

func TestNewRuntimeFailsFastOnInvalidConfig(t *testing.T) {
	_, err := NewRuntime(context.Background(), &recordingUpdater{},
		WithConfigOptions(WithEnvMap(map[string]string{"DEMO_SUCCESS_RATE": "1.5"})),
	)
	var cfgErr *core.ConfigValidationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config validation error, got %v", err)
	}
	if cfgErr.Field != "payment.demo.success_rate" {
		t.Fatalf("unexpected field %q", cfgErr.Field)
	}
}

func TestNewRuntimeRequiresUpdater(t *testing.T) {
	if _, err := NewRuntime(context.Background(), nil, WithConfigOptions(WithEnvMap(runtimeEnv(t, nil)))); err == nil {
		t.Fatalf("expected missing updater to fail")
	}
}

func TestRuntimeAdvancesDemoOrderAndCloses(t *testing.T) {
	updater := &recordingUpdater{}
	runtime := newTestRuntime(t, updater, nil)
	ctx := context.Background()

	_, scheduled, err := runtime.Progression.StartAutoAdvancement(ctx, core.Order{
		ID:            "order-1",
		Status:        core.OrderStatusPending,
		PaymentMethod: "demo_card",
	})
	if err != nil || !scheduled {
		t.Fatalf("start auto advance: scheduled=%v err=%v", scheduled, err)
	}
	fired, err := runtime.Progression.Tick(ctx)
	if err != nil || fired != 1 {
		t.Fatalf("tick: fired=%d err=%v", fired, err)
	}
	if got := updater.statuses(); len(got) != 1 || got[0] != core.OrderStatusConfirmed {
		t.Fatalf("unexpected updates %v", got)
	}
	if _, ok, _ := runtime.Progression.Schedule(ctx, "order-1"); !ok {
		t.Fatalf("expected the next transition to be armed")
	}

	if err := runtime.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok, _ := runtime.Progression.Schedule(ctx, "order-1"); ok {
		t.Fatalf("expected close to cancel outstanding schedules")
	}
}

func TestRuntimeForwardsProgressionOptions(t *testing.T) {
	changes := 0
	runtime, err := NewRuntime(context.Background(), &recordingUpdater{},
		WithConfigOptions(WithEnvMap(runtimeEnv(t, nil))),
		WithRuntimeClock(fixedClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}),
		WithProgressionOptions(progression.WithObserver(progression.ObserverFunc(func(context.Context, core.StatusChange) error {
			changes++
			return nil
		}))),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	ctx := context.Background()
	if _, _, err := runtime.Progression.StartAutoAdvancement(ctx, core.Order{ID: "order-2", Status: core.OrderStatusShipped, PaymentMethod: "demo"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := runtime.Progression.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if changes != 1 {
		t.Fatalf("expected one observed change, got %d", changes)
	}
	if _, ok, _ := runtime.Progression.Schedule(ctx, "order-2"); ok {
		t.Fatalf("expected the chain to end at delivered")
	}
}

func TestRuntimeProductionReadiness(t *testing.T) {
	runtime := newTestRuntime(t, &recordingUpdater{}, map[string]string{"JWT_SECRET": "runtime-readiness-secret-0123456789abcdef"})
	report := runtime.ProductionReadiness()
	if report.IsValid {
		t.Fatalf("expected readiness to fail")
	}
	want := []string{"DATABASE_URL", "NEXTAUTH_SECRET", "NEXTAUTH_URL", "PAYMENT_MODE"}
	if len(report.Missing) != len(want) {
		t.Fatalf("unexpected missing %v", report.Missing)
	}
	for i, key := range want {
		if report.Missing[i] != key {
			t.Fatalf("expected %s at %d, got %v", key, i, report.Missing)
		}
	}
}

func TestRuntimeCloseIsNilSafe(t *testing.T) {
	var runtime *Runtime
	if err := runtime.Close(context.Background()); err != nil {
		t.Fatalf("expected nil runtime close to succeed, got %v", err)
	}
}
