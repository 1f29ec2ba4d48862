package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const progressScheduleCacheKeyPrefix = "go-checkout::progress_schedule::v1"

// CachedProgressStore serves Get from a read-through cache. Every write drops
// the cached entry for the order. ListDue and List always hit the base store.
type CachedProgressStore struct {
	base  core.ProgressStore
	cache repositorycache.CacheService
}

func NewCachedProgressStore(
	base core.ProgressStore,
	cacheService repositorycache.CacheService,
) (*CachedProgressStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base progress store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: progress cache service is required")
	}
	return &CachedProgressStore{base: base, cache: cacheService}, nil
}

// ProgressScheduleCacheKey returns go-checkout::progress_schedule::v1::<order_id>
// with the order id URL-path escaped.
func ProgressScheduleCacheKey(orderID string) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", fmt.Errorf("sqlstore: order id is required")
	}
	return progressScheduleCacheKeyPrefix + "::" + url.PathEscape(orderID), nil
}

func (s *CachedProgressStore) Save(ctx context.Context, schedule core.ProgressSchedule) (core.ProgressSchedule, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.ProgressSchedule{}, fmt.Errorf("sqlstore: cached progress store is not configured")
	}
	saved, err := s.base.Save(ctx, schedule)
	if err != nil {
		return core.ProgressSchedule{}, err
	}
	if err := s.invalidate(ctx, saved.OrderID); err != nil {
		return core.ProgressSchedule{}, err
	}
	return saved, nil
}

// Get caches hits only; a missing schedule is looked up again next time.
func (s *CachedProgressStore) Get(ctx context.Context, orderID string) (core.ProgressSchedule, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.ProgressSchedule{}, fmt.Errorf("sqlstore: cached progress store is not configured")
	}
	cacheKey, err := ProgressScheduleCacheKey(orderID)
	if err != nil {
		return core.ProgressSchedule{}, err
	}
	schedule, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.ProgressSchedule, error) {
		return s.base.Get(ctx, strings.TrimSpace(orderID))
	})
	if err != nil {
		if errors.Is(err, core.ErrScheduleNotFound) {
			return core.ProgressSchedule{}, core.ErrScheduleNotFound
		}
		return core.ProgressSchedule{}, err
	}
	return schedule, nil
}

func (s *CachedProgressStore) Delete(ctx context.Context, orderID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached progress store is not configured")
	}
	if err := s.base.Delete(ctx, orderID); err != nil {
		return err
	}
	return s.invalidate(ctx, orderID)
}

func (s *CachedProgressStore) Claim(ctx context.Context, orderID string, token string) (bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return false, fmt.Errorf("sqlstore: cached progress store is not configured")
	}
	claimed, err := s.base.Claim(ctx, orderID, token)
	if err != nil {
		return false, err
	}
	if claimed {
		if err := s.invalidate(ctx, orderID); err != nil {
			return true, err
		}
	}
	return claimed, nil
}

func (s *CachedProgressStore) ListDue(ctx context.Context, now time.Time, limit int) ([]core.ProgressSchedule, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached progress store is not configured")
	}
	return s.base.ListDue(ctx, now, limit)
}

func (s *CachedProgressStore) List(ctx context.Context) ([]core.ProgressSchedule, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached progress store is not configured")
	}
	return s.base.List(ctx)
}

func (s *CachedProgressStore) invalidate(ctx context.Context, orderID string) error {
	cacheKey, err := ProgressScheduleCacheKey(orderID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
