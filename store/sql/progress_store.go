package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProgressStore persists progress schedules in order_progress_schedules. The
// table holds at most one row per order.
type ProgressStore struct {
	db   *bun.DB
	repo repository.Repository[*progressScheduleRecord]
}

func NewProgressStore(db *bun.DB) (*ProgressStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*progressScheduleRecord](db, progressScheduleHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid progress schedule repository wiring: %w", err)
		}
	}
	return &ProgressStore{db: db, repo: repo}, nil
}

func (s *ProgressStore) Save(ctx context.Context, schedule core.ProgressSchedule) (core.ProgressSchedule, error) {
	if s == nil || s.db == nil {
		return core.ProgressSchedule{}, fmt.Errorf("sqlstore: progress store is not configured")
	}
	schedule.OrderID = strings.TrimSpace(schedule.OrderID)
	if schedule.OrderID == "" {
		return core.ProgressSchedule{}, fmt.Errorf("sqlstore: order id is required")
	}
	if strings.TrimSpace(schedule.Token) == "" {
		return core.ProgressSchedule{}, fmt.Errorf("sqlstore: schedule token is required")
	}
	now := time.Now().UTC()

	var out core.ProgressSchedule
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findScheduleTx(ctx, tx, schedule.OrderID)
		if err != nil {
			return err
		}
		if existing == nil {
			record := newProgressScheduleRecord(schedule, now)
			record.ID = uuid.NewString()
			inserted, createErr := s.repo.CreateTx(ctx, tx, record)
			if createErr != nil {
				return createErr
			}
			out = inserted.toDomain()
			return nil
		}

		existing.apply(schedule, now)
		if _, updateErr := tx.NewUpdate().
			Model(existing).
			Where("id = ?", existing.ID).
			Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = existing.toDomain()
		return nil
	})
	if err != nil {
		return core.ProgressSchedule{}, err
	}
	return out, nil
}

func (s *ProgressStore) Get(ctx context.Context, orderID string) (core.ProgressSchedule, error) {
	if s == nil || s.repo == nil {
		return core.ProgressSchedule{}, fmt.Errorf("sqlstore: progress store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("order_id", "=", strings.TrimSpace(orderID)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.ProgressSchedule{}, err
	}
	if len(records) == 0 {
		return core.ProgressSchedule{}, core.ErrScheduleNotFound
	}
	return records[0].toDomain(), nil
}

func (s *ProgressStore) Delete(ctx context.Context, orderID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: progress store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*progressScheduleRecord)(nil)).
		Where("order_id = ?", strings.TrimSpace(orderID)).
		Exec(ctx)
	return err
}

func (s *ProgressStore) Claim(ctx context.Context, orderID string, token string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: progress store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*progressScheduleRecord)(nil)).
		Where("order_id = ?", strings.TrimSpace(orderID)).
		Where("token = ?", strings.TrimSpace(token)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *ProgressStore) ListDue(ctx context.Context, now time.Time, limit int) ([]core.ProgressSchedule, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: progress store is not configured")
	}
	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.wake_at <= ?", now.UTC())
		}),
		repository.OrderBy("wake_at ASC"),
		repository.OrderBy("order_id ASC"),
	}
	if limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(limit, 0))
	}
	return s.list(ctx, criteria...)
}

func (s *ProgressStore) List(ctx context.Context) ([]core.ProgressSchedule, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: progress store is not configured")
	}
	return s.list(ctx,
		repository.OrderBy("wake_at ASC"),
		repository.OrderBy("order_id ASC"),
	)
}

func (s *ProgressStore) list(ctx context.Context, criteria ...repository.SelectCriteria) ([]core.ProgressSchedule, error) {
	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]core.ProgressSchedule, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func findScheduleTx(ctx context.Context, tx bun.Tx, orderID string) (*progressScheduleRecord, error) {
	record := &progressScheduleRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.order_id = ?", orderID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

