package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/uptrace/bun"
)

type progressScheduleRecord struct {
	bun.BaseModel `bun:"table:order_progress_schedules,alias:ops"`

	ID            string    `bun:"id,pk"`
	OrderID       string    `bun:"order_id,notnull"`
	CurrentStatus string    `bun:"current_status,notnull"`
	NextStatus    string    `bun:"next_status,notnull"`
	WakeAt        time.Time `bun:"wake_at,notnull"`
	Token         string    `bun:"token,notnull"`
	PaymentMethod string    `bun:"payment_method,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newProgressScheduleRecord(schedule core.ProgressSchedule, now time.Time) *progressScheduleRecord {
	record := &progressScheduleRecord{OrderID: strings.TrimSpace(schedule.OrderID)}
	record.apply(schedule, now)
	record.CreatedAt = now
	if !schedule.CreatedAt.IsZero() {
		record.CreatedAt = schedule.CreatedAt.UTC()
	}
	return record
}

func (r *progressScheduleRecord) apply(schedule core.ProgressSchedule, now time.Time) {
	r.CurrentStatus = string(schedule.CurrentStatus)
	r.NextStatus = string(schedule.NextStatus)
	r.WakeAt = schedule.WakeAt.UTC()
	r.Token = strings.TrimSpace(schedule.Token)
	r.PaymentMethod = strings.TrimSpace(schedule.PaymentMethod)
	r.UpdatedAt = now
	if !schedule.UpdatedAt.IsZero() {
		r.UpdatedAt = schedule.UpdatedAt.UTC()
	}
}

func (r *progressScheduleRecord) toDomain() core.ProgressSchedule {
	if r == nil {
		return core.ProgressSchedule{}
	}
	return core.ProgressSchedule{
		OrderID:       r.OrderID,
		CurrentStatus: core.OrderStatus(r.CurrentStatus),
		NextStatus:    core.OrderStatus(r.NextStatus),
		WakeAt:        r.WakeAt.UTC(),
		Token:         r.Token,
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}
