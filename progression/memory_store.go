package progression

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/core"
)

// MemoryStore keeps schedules in process memory.
type MemoryStore struct {
	mu        sync.Mutex
	schedules map[string]core.ProgressSchedule
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schedules: map[string]core.ProgressSchedule{}}
}

func (s *MemoryStore) Save(_ context.Context, schedule core.ProgressSchedule) (core.ProgressSchedule, error) {
	if s == nil {
		return core.ProgressSchedule{}, fmt.Errorf("progression: memory store is nil")
	}
	schedule.OrderID = strings.TrimSpace(schedule.OrderID)
	if schedule.OrderID == "" {
		return core.ProgressSchedule{}, fmt.Errorf("progression: order id is required")
	}
	if strings.TrimSpace(schedule.Token) == "" {
		return core.ProgressSchedule{}, fmt.Errorf("progression: schedule token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.schedules[schedule.OrderID]; ok && schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = existing.CreatedAt
	}
	s.schedules[schedule.OrderID] = schedule
	return schedule, nil
}

func (s *MemoryStore) Get(_ context.Context, orderID string) (core.ProgressSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[strings.TrimSpace(orderID)]
	if !ok {
		return core.ProgressSchedule{}, core.ErrScheduleNotFound
	}
	return schedule, nil
}

func (s *MemoryStore) Delete(_ context.Context, orderID string) error {
	s.mu.Lock()
	delete(s.schedules, strings.TrimSpace(orderID))
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, orderID string, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orderID = strings.TrimSpace(orderID)
	schedule, ok := s.schedules[orderID]
	if !ok || schedule.Token != token {
		return false, nil
	}
	delete(s.schedules, orderID)
	return true, nil
}

func (s *MemoryStore) ListDue(_ context.Context, now time.Time, limit int) ([]core.ProgressSchedule, error) {
	s.mu.Lock()
	due := make([]core.ProgressSchedule, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		if schedule.Due(now) {
			due = append(due, schedule)
		}
	}
	s.mu.Unlock()
	sortSchedules(due)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStore) List(_ context.Context) ([]core.ProgressSchedule, error) {
	s.mu.Lock()
	out := make([]core.ProgressSchedule, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		out = append(out, schedule)
	}
	s.mu.Unlock()
	sortSchedules(out)
	return out, nil
}

func sortSchedules(schedules []core.ProgressSchedule) {
	sort.Slice(schedules, func(i, j int) bool {
		if schedules[i].WakeAt.Equal(schedules[j].WakeAt) {
			return schedules[i].OrderID < schedules[j].OrderID
		}
		return schedules[i].WakeAt.Before(schedules[j].WakeAt)
	})
}

var _ core.ProgressStore = (*MemoryStore)(nil)
