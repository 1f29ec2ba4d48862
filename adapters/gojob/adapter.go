package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/adapters/gologger"
	"github.com/goliatone/go-checkout/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

const (
	JobIDOrderStatusUpdate = "checkout.order.status_update"

	loggerName = "checkout.gojob"
)

// RetryPolicy bounds how often a failed status update is requeued.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// StatusUpdateMessage encodes one transition. The idempotency key is
// order:status so a duplicate enqueue of the same transition is dropped.
func StatusUpdateMessage(orderID string, update core.StatusUpdate) (*job.ExecutionMessage, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("gojob: order id is required")
	}
	if strings.TrimSpace(string(update.Status)) == "" {
		return nil, fmt.Errorf("gojob: status is required")
	}
	return &job.ExecutionMessage{
		JobID:      JobIDOrderStatusUpdate,
		ScriptPath: JobIDOrderStatusUpdate,
		Parameters: map[string]any{
			"order_id": orderID,
			"status":   string(update.Status),
			"note":     update.Note,
		},
		IdempotencyKey: orderID + ":" + string(update.Status),
		DedupPolicy:    job.DeduplicationPolicy("drop"),
	}, nil
}

// DecodeStatusUpdate reverses StatusUpdateMessage.
func DecodeStatusUpdate(msg *job.ExecutionMessage) (string, core.StatusUpdate, error) {
	if msg == nil {
		return "", core.StatusUpdate{}, fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDOrderStatusUpdate {
		return "", core.StatusUpdate{}, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	orderID := stringParam(msg.Parameters, "order_id")
	status := stringParam(msg.Parameters, "status")
	if orderID == "" || status == "" {
		return "", core.StatusUpdate{}, fmt.Errorf("gojob: status update message is missing order_id or status")
	}
	return orderID, core.StatusUpdate{
		Status: core.OrderStatus(status),
		Note:   stringParam(msg.Parameters, "note"),
	}, nil
}

type Option func(*options)

type options struct {
	logger         core.Logger
	loggerProvider core.LoggerProvider
	policy         RetryPolicy
}

func WithLogger(logger core.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(o *options) {
		o.loggerProvider = provider
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

func buildOptions(opts []Option) options {
	resolved := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}
	_, resolved.logger = gologger.Resolve(loggerName, resolved.loggerProvider, resolved.logger)
	return resolved
}

// StatusUpdateEnqueuer satisfies core.StatusUpdater by queueing the
// transition for a worker. The returned order only echoes the requested
// status; the worker applies it.
type StatusUpdateEnqueuer struct {
	enqueuer queue.Enqueuer
	logger   core.Logger
}

func NewStatusUpdateEnqueuer(enqueuer queue.Enqueuer, opts ...Option) (*StatusUpdateEnqueuer, error) {
	if enqueuer == nil {
		return nil, fmt.Errorf("gojob: enqueuer is required")
	}
	resolved := buildOptions(opts)
	return &StatusUpdateEnqueuer{enqueuer: enqueuer, logger: resolved.logger}, nil
}

func (e *StatusUpdateEnqueuer) UpdateOrderStatus(ctx context.Context, orderID string, update core.StatusUpdate) (core.Order, error) {
	if e == nil || e.enqueuer == nil {
		return core.Order{}, fmt.Errorf("gojob: enqueuer is not configured")
	}
	msg, err := StatusUpdateMessage(orderID, update)
	if err != nil {
		return core.Order{}, err
	}
	if err := e.enqueuer.Enqueue(ctx, msg); err != nil {
		return core.Order{}, err
	}
	e.logger.Debug("status update enqueued", "order_id", orderID, "status", update.Status)
	return core.Order{ID: strings.TrimSpace(orderID), Status: update.Status}, nil
}

// StatusUpdateConsumer drains queued transitions into a core.StatusUpdater,
// acking on success and nacking per the retry policy on failure.
type StatusUpdateConsumer struct {
	dequeuer queue.Dequeuer
	updater  core.StatusUpdater
	policy   RetryPolicy
	logger   core.Logger

	mu       sync.Mutex
	attempts map[string]int
}

func NewStatusUpdateConsumer(dequeuer queue.Dequeuer, updater core.StatusUpdater, opts ...Option) (*StatusUpdateConsumer, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	if updater == nil {
		return nil, fmt.Errorf("gojob: status updater is required")
	}
	resolved := buildOptions(opts)
	return &StatusUpdateConsumer{
		dequeuer: dequeuer,
		updater:  updater,
		policy:   resolved.policy,
		logger:   resolved.logger,
		attempts: map[string]int{},
	}, nil
}

// ProcessNext handles a single delivery. Malformed messages are dead-lettered.
func (c *StatusUpdateConsumer) ProcessNext(ctx context.Context) error {
	delivery, err := c.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}
	msg := delivery.Message()
	orderID, update, err := DecodeStatusUpdate(msg)
	if err != nil {
		c.logger.Warn("dropping malformed status update", "error", err.Error())
		return delivery.Nack(ctx, queue.NackOptions{DeadLetter: true, Reason: err.Error()})
	}

	key := msg.IdempotencyKey
	if _, err := c.updater.UpdateOrderStatus(ctx, orderID, update); err != nil {
		attempt := c.recordAttempt(key)
		opts := c.policy.NormalizeAttempt(queue.NackOptions{Requeue: true, Reason: err.Error()}, attempt)
		c.logger.Warn("status update failed",
			"order_id", orderID,
			"status", update.Status,
			"attempt", attempt,
			"requeue", opts.Requeue,
			"error", err.Error(),
		)
		if opts.DeadLetter {
			c.clearAttempts(key)
		}
		return delivery.Nack(ctx, opts)
	}
	c.clearAttempts(key)
	return delivery.Ack(ctx)
}

func (c *StatusUpdateConsumer) recordAttempt(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[key]++
	return c.attempts[key]
}

func (c *StatusUpdateConsumer) clearAttempts(key string) {
	c.mu.Lock()
	delete(c.attempts, key)
	c.mu.Unlock()
}

// LoggingHook reports go-job worker lifecycle events for status updates.
type LoggingHook struct {
	logger core.Logger
}

func NewLoggingHook(opts ...Option) *LoggingHook {
	return &LoggingHook{logger: buildOptions(opts).logger}
}

func (h *LoggingHook) OnStart(_ context.Context, event worker.Event) {
	h.logger.Debug("status update job started", eventFields(event)...)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.logger.Info("status update job succeeded", eventFields(event)...)
}

func (h *LoggingHook) OnFailure(_ context.Context, event worker.Event) {
	h.logger.Error("status update job failed", eventFields(event)...)
}

func (h *LoggingHook) OnRetry(_ context.Context, event worker.Event) {
	h.logger.Warn("status update job retrying", eventFields(event)...)
}

func eventFields(event worker.Event) []any {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	fields := []any{"attempt", event.Attempt, "duration", event.Duration.String()}
	if message != nil {
		fields = append(fields,
			"job_id", message.JobID,
			"order_id", stringParam(message.Parameters, "order_id"),
			"status", stringParam(message.Parameters, "status"),
		)
	}
	if event.Delay > 0 {
		fields = append(fields, "delay", event.Delay.String())
	}
	if event.Err != nil {
		fields = append(fields, "error", event.Err.Error())
	}
	return fields
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	value, ok := params[key]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

var (
	_ core.StatusUpdater = (*StatusUpdateEnqueuer)(nil)
	_ worker.Hook        = (*LoggingHook)(nil)
)
