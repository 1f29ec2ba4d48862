package progression

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/google/uuid"
)

var ErrAlreadyRunning = errors.New("progression: engine loop is already running")

// Engine drives demo orders through core.OrderStatusFlow.
type Engine struct {
	enabled      bool
	delay        time.Duration
	updater      core.StatusUpdater
	store        core.ProgressStore
	clock        core.Clock
	logger       core.Logger
	observer     core.Observer
	observers    []Observer
	pollInterval time.Duration
	batchSize    int

	// mu serialises every schedule mutation; updater calls run outside it.
	mu       sync.Mutex
	inflight map[string]string
	stop     chan struct{}
	done     chan struct{}
}

// NewEngine reads the feature flag and advance delay from cfg.
func NewEngine(cfg core.DemoPaymentConfig, updater core.StatusUpdater, opts ...Option) (*Engine, error) {
	if updater == nil {
		return nil, fmt.Errorf("progression: status updater is required")
	}
	resolved := buildOptions(opts)
	return &Engine{
		enabled:      cfg.AutoAdvanceOrders,
		delay:        cfg.AdvanceDelay(),
		updater:      updater,
		store:        resolved.store,
		clock:        resolved.clock,
		logger:       resolved.logger,
		observer:     core.NewObserver(loggerName, resolved.logger, resolved.metrics),
		observers:    append([]Observer(nil), resolved.observers...),
		pollInterval: resolved.pollInterval,
		batchSize:    resolved.batchSize,
		inflight:     map[string]string{},
	}, nil
}

func (e *Engine) Enabled() bool {
	return e != nil && e.enabled
}

func (e *Engine) Store() core.ProgressStore {
	return e.store
}

// AddObserver registers an observer for subsequent transitions.
func (e *Engine) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	e.mu.Lock()
	e.observers = append(e.observers, observer)
	e.mu.Unlock()
}

// StartAutoAdvancement arms the next transition for a demo order and replaces
// any schedule the order already has. It reports false when nothing was
// scheduled: the feature is off, the payment method is not a demo method, or
// the status has no successor.
func (e *Engine) StartAutoAdvancement(ctx context.Context, order core.Order) (core.ProgressSchedule, bool, error) {
	orderID := strings.TrimSpace(order.ID)
	if orderID == "" {
		return core.ProgressSchedule{}, false, fmt.Errorf("progression: order id is required")
	}
	if !e.enabled {
		e.logger.Debug("auto advance disabled", "order_id", orderID)
		return core.ProgressSchedule{}, false, nil
	}
	if !core.IsDemoPaymentMethod(order.PaymentMethod) {
		e.logger.Debug("auto advance skipped for non-demo payment", "order_id", orderID, "payment_method", order.PaymentMethod)
		return core.ProgressSchedule{}, false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, orderID)
	return e.armLocked(ctx, orderID, order.Status, order.PaymentMethod)
}

// StopAutoAdvancement cancels the order's schedule. Stopping an order without
// a schedule is a no-op.
func (e *Engine) StopAutoAdvancement(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("progression: order id is required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, orderID)
	if err := e.store.Delete(ctx, orderID); err != nil {
		return err
	}
	e.logger.Debug("auto advance stopped", "order_id", orderID)
	return nil
}

// Schedule returns the live schedule for orderID, if any.
func (e *Engine) Schedule(ctx context.Context, orderID string) (core.ProgressSchedule, bool, error) {
	schedule, err := e.store.Get(ctx, strings.TrimSpace(orderID))
	if errors.Is(err, core.ErrScheduleNotFound) {
		return core.ProgressSchedule{}, false, nil
	}
	if err != nil {
		return core.ProgressSchedule{}, false, err
	}
	return schedule, true, nil
}

func (e *Engine) armLocked(ctx context.Context, orderID string, current core.OrderStatus, method string) (core.ProgressSchedule, bool, error) {
	next, ok := core.NextOrderStatus(current)
	if !ok {
		if err := e.store.Delete(ctx, orderID); err != nil {
			return core.ProgressSchedule{}, false, err
		}
		return core.ProgressSchedule{}, false, nil
	}
	now := e.clock.Now().UTC()
	schedule, err := e.store.Save(ctx, core.ProgressSchedule{
		OrderID:       orderID,
		CurrentStatus: current,
		NextStatus:    next,
		WakeAt:        now.Add(e.delay),
		Token:         uuid.NewString(),
		PaymentMethod: method,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return core.ProgressSchedule{}, false, err
	}
	e.logger.Debug("auto advance scheduled",
		"order_id", orderID,
		"from", current,
		"to", next,
		"wake_at", schedule.WakeAt,
	)
	return schedule, true, nil
}

// Tick fires every schedule due at the clock's current time and returns how
// many transitions were applied.
func (e *Engine) Tick(ctx context.Context) (int, error) {
	due, err := e.store.ListDue(ctx, e.clock.Now().UTC(), e.batchSize)
	if err != nil {
		return 0, err
	}
	fired := 0
	for _, schedule := range due {
		if ctx.Err() != nil {
			return fired, ctx.Err()
		}
		applied, err := e.fire(ctx, schedule)
		if err != nil {
			return fired, err
		}
		if applied {
			fired++
		}
	}
	return fired, nil
}

// fire only returns store errors; updater failures are logged and end the
// order's chain.
func (e *Engine) fire(ctx context.Context, schedule core.ProgressSchedule) (bool, error) {
	e.mu.Lock()
	claimed, err := e.store.Claim(ctx, schedule.OrderID, schedule.Token)
	if claimed {
		e.inflight[schedule.OrderID] = schedule.Token
	}
	e.mu.Unlock()
	if !claimed {
		return false, err
	}
	if err != nil {
		// the schedule is already gone, so the transition still has to run
		e.logger.Warn("schedule claim reported an error",
			"order_id", schedule.OrderID,
			"error", err.Error(),
		)
	}

	startedAt := time.Now()
	update := core.StatusUpdate{Status: schedule.NextStatus, Note: core.StatusNote(schedule.NextStatus)}
	order, err := e.updater.UpdateOrderStatus(ctx, schedule.OrderID, update)
	e.observer.ObserveOperation(ctx, startedAt, "advance", err, map[string]any{
		"order_id": schedule.OrderID,
		"from":     string(schedule.CurrentStatus),
		"to":       string(schedule.NextStatus),
	})
	if err != nil {
		e.mu.Lock()
		if e.inflight[schedule.OrderID] == schedule.Token {
			delete(e.inflight, schedule.OrderID)
		}
		e.mu.Unlock()
		e.logger.Error("auto advance update failed",
			"order_id", schedule.OrderID,
			"to", schedule.NextStatus,
			"error", err.Error(),
		)
		return false, nil
	}
	if order.ID == "" {
		order.ID = schedule.OrderID
	}
	if order.Status == "" {
		order.Status = schedule.NextStatus
	}

	e.notify(ctx, core.StatusChange{
		OrderID:    schedule.OrderID,
		From:       schedule.CurrentStatus,
		To:         schedule.NextStatus,
		Note:       update.Note,
		Order:      order,
		OccurredAt: e.clock.Now().UTC(),
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[schedule.OrderID] != schedule.Token {
		// the schedule was replaced or cancelled mid-update
		return true, nil
	}
	delete(e.inflight, schedule.OrderID)
	if schedule.NextStatus == core.OrderStatusDelivered {
		e.logger.Info("auto advance complete", "order_id", schedule.OrderID)
		return true, nil
	}
	if _, _, err := e.armLocked(ctx, schedule.OrderID, schedule.NextStatus, schedule.PaymentMethod); err != nil {
		return true, err
	}
	return true, nil
}

func (e *Engine) notify(ctx context.Context, change core.StatusChange) {
	e.mu.Lock()
	observers := append([]Observer(nil), e.observers...)
	e.mu.Unlock()
	for _, observer := range observers {
		if err := observer.OnStatusChange(ctx, change); err != nil {
			e.logger.Warn("status change observer failed",
				"order_id", change.OrderID,
				"to", change.To,
				"error", err.Error(),
			)
		}
	}
}

// Run polls for due schedules until ctx is done or Shutdown is called. Only
// one loop may run at a time.
func (e *Engine) Run(ctx context.Context) error {
	stop, done, err := e.beginLoop()
	if err != nil {
		return err
	}
	defer e.endLoop(done)
	return e.loop(ctx, stop)
}

// Start runs the loop in a background goroutine.
func (e *Engine) Start(ctx context.Context) error {
	stop, done, err := e.beginLoop()
	if err != nil {
		return err
	}
	go func() {
		defer e.endLoop(done)
		if err := e.loop(ctx, stop); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Warn("auto advance loop exited", "error", err.Error())
		}
	}()
	return nil
}

func (e *Engine) loop(ctx context.Context, stop <-chan struct{}) error {
	e.logger.Info("auto advance loop started", "poll_interval", e.pollInterval.String())
	for {
		if _, err := e.Tick(ctx); err != nil && ctx.Err() == nil {
			e.logger.Warn("auto advance tick failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-e.clock.After(e.pollInterval):
		}
	}
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stop != nil
}

func (e *Engine) beginLoop() (chan struct{}, chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		return nil, nil, ErrAlreadyRunning
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	return e.stop, e.done, nil
}

func (e *Engine) endLoop(done chan struct{}) {
	e.mu.Lock()
	if e.done == done {
		e.stop = nil
		e.done = nil
	}
	e.mu.Unlock()
	close(done)
}

// Shutdown stops the loop, waits for it to exit and cancels every outstanding
// schedule. The engine can be started again afterwards.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	stop, done := e.stop, e.done
	if stop != nil {
		close(stop)
		e.stop = nil
	}
	e.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight = map[string]string{}
	schedules, err := e.store.List(ctx)
	if err != nil {
		return err
	}
	for _, schedule := range schedules {
		if err := e.store.Delete(ctx, schedule.OrderID); err != nil {
			return err
		}
	}
	e.logger.Info("auto advance shut down", "cancelled", len(schedules))
	return nil
}
