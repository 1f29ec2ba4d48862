package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type PaymentService interface {
	ProcessPayment(ctx context.Context, amount float64, method PaymentMethod) PaymentResult
	CreatePaymentIntent(ctx context.Context, amount float64, currency string) (PaymentIntent, error)
	ConfirmPayment(ctx context.Context, intentID string, method PaymentMethod) PaymentResult
	GetPaymentMethods() []PaymentMethodOption
	ValidatePaymentMethod(method PaymentMethod) ValidationResult
	IsDemo() bool
}

type EmailService interface {
	Send(ctx context.Context, msg EmailMessage) (EmailResult, error)
	SendOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) (EmailResult, error)
	Provider() string
	IsDemo() bool
}

type StorageService interface {
	Upload(ctx context.Context, key string, contentType string, data []byte) (StoredAsset, error)
	Delete(ctx context.Context, key string) error
	URL(key string, opts AssetURLOptions) string
	Provider() string
	IsDemo() bool
}

// Engine exposes the concrete engine name of a constructed provider.
type Engine interface {
	EngineName() string
}

// StatusUpdater is the order-status-update collaborator.
type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID string, update StatusUpdate) (Order, error)
}

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// Sleep waits for d on the clock or until ctx is done.
func Sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
