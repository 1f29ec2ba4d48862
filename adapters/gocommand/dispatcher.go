package gocommand

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
)

const TypeOrderStatusChanged = "checkout.order.status_changed"

// OrderStatusChangedMessage is dispatched after every automatic transition.
type OrderStatusChangedMessage struct {
	OrderID       string
	From          core.OrderStatus
	To            core.OrderStatus
	Note          string
	PaymentMethod string
	OccurredAt    time.Time
}

func (OrderStatusChangedMessage) Type() string {
	return TypeOrderStatusChanged
}

func (m OrderStatusChangedMessage) Validate() error {
	if strings.TrimSpace(m.OrderID) == "" {
		return fmt.Errorf("gocommand: order id is required")
	}
	if strings.TrimSpace(string(m.To)) == "" {
		return fmt.Errorf("gocommand: target status is required")
	}
	return nil
}

// DispatchFunc sends a message to its subscribers.
type DispatchFunc func(ctx context.Context, msg OrderStatusChangedMessage) error

// StatusChangeDispatcher forwards progression status changes onto the
// go-command dispatcher. It satisfies progression.Observer.
type StatusChangeDispatcher struct {
	dispatch DispatchFunc
}

// NewStatusChangeDispatcher uses the global go-command dispatcher when
// dispatch is nil.
func NewStatusChangeDispatcher(dispatch DispatchFunc) *StatusChangeDispatcher {
	if dispatch == nil {
		dispatch = func(ctx context.Context, msg OrderStatusChangedMessage) error {
			return commanddispatcher.Dispatch(ctx, msg)
		}
	}
	return &StatusChangeDispatcher{dispatch: dispatch}
}

func (d *StatusChangeDispatcher) OnStatusChange(ctx context.Context, change core.StatusChange) error {
	if d == nil || d.dispatch == nil {
		return fmt.Errorf("gocommand: status change dispatcher is not configured")
	}
	msg := OrderStatusChangedMessage{
		OrderID:       strings.TrimSpace(change.OrderID),
		From:          change.From,
		To:            change.To,
		Note:          change.Note,
		PaymentMethod: change.Order.PaymentMethod,
		OccurredAt:    change.OccurredAt,
	}
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	return d.dispatch(ctx, msg)
}
