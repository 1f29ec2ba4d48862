package core

import (
	"context"
	"time"
)

// ProgressSchedule is the persisted next wake time of a demo order. There is at
// most one live schedule per order.
type ProgressSchedule struct {
	OrderID       string      `json:"orderId"`
	CurrentStatus OrderStatus `json:"currentStatus"`
	NextStatus    OrderStatus `json:"nextStatus"`
	WakeAt        time.Time   `json:"wakeAt"`
	Token         string      `json:"token"`
	PaymentMethod string      `json:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Due reports whether the schedule should fire at now.
func (s ProgressSchedule) Due(now time.Time) bool {
	return !s.WakeAt.After(now)
}

// ProgressStore persists progress schedules keyed by order id.
type ProgressStore interface {
	// Save inserts or replaces the schedule for schedule.OrderID.
	Save(ctx context.Context, schedule ProgressSchedule) (ProgressSchedule, error)
	// Get returns ErrScheduleNotFound when the order has no schedule.
	Get(ctx context.Context, orderID string) (ProgressSchedule, error)
	// Delete is a no-op when the order has no schedule.
	Delete(ctx context.Context, orderID string) error
	// Claim removes the schedule only while it still carries token, so a
	// replaced or stopped schedule is never fired. claimed may be true
	// alongside an error when the removal itself succeeded.
	Claim(ctx context.Context, orderID string, token string) (bool, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]ProgressSchedule, error)
	List(ctx context.Context) ([]ProgressSchedule, error)
}

// NextOrderStatus returns the auto-advance successor of status. DELIVERED,
// the externally reached terminals and unknown statuses have none.
func NextOrderStatus(status OrderStatus) (OrderStatus, bool) {
	for i, candidate := range OrderStatusFlow {
		if candidate != status {
			continue
		}
		if i+1 >= len(OrderStatusFlow) {
			return "", false
		}
		return OrderStatusFlow[i+1], true
	}
	return "", false
}

// StatusNote is the note recorded with an automatic transition.
func StatusNote(status OrderStatus) string {
	switch status {
	case OrderStatusConfirmed:
		return "Payment confirmed (demo)"
	case OrderStatusProcessing:
		return "Order is being prepared (demo)"
	case OrderStatusShipped:
		return "Order has shipped (demo)"
	case OrderStatusDelivered:
		return "Order delivered (demo)"
	default:
		return "Status updated automatically (demo)"
	}
}
