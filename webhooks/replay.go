package webhooks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	DefaultReplayWindow     = 24 * time.Hour
	defaultReplayMaxEntries = 8192
)

var ErrReplayKeyRequired = errors.New("webhooks: replay key is required")

// ReplayLedger remembers delivered event ids so a redelivered event is
// acknowledged without being handled twice.
type ReplayLedger interface {
	// Claim reports true the first time key is seen inside window.
	Claim(ctx context.Context, key string, window time.Duration) (bool, error)
}

// MemoryReplayLedger is a bounded in-process ReplayLedger. When full, the
// entry closest to expiry is evicted.
type MemoryReplayLedger struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	seen       map[string]time.Time
	Now        func() time.Time
}

func NewMemoryReplayLedger(window time.Duration, maxEntries int) *MemoryReplayLedger {
	if window <= 0 {
		window = DefaultReplayWindow
	}
	if maxEntries <= 0 {
		maxEntries = defaultReplayMaxEntries
	}
	return &MemoryReplayLedger{
		window:     window,
		maxEntries: maxEntries,
		seen:       map[string]time.Time{},
		Now:        time.Now,
	}
}

func (l *MemoryReplayLedger) Claim(_ context.Context, key string, window time.Duration) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrReplayKeyRequired
	}
	if window <= 0 {
		window = l.window
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)
	if _, ok := l.seen[key]; ok {
		return false, nil
	}
	for len(l.seen) >= l.maxEntries {
		l.evictLocked()
	}
	l.seen[key] = now.Add(window)
	return true, nil
}

// Len reports how many live keys the ledger holds.
func (l *MemoryReplayLedger) Len() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(now)
	return len(l.seen)
}

func (l *MemoryReplayLedger) now() time.Time {
	if l.Now == nil {
		return time.Now().UTC()
	}
	return l.Now().UTC()
}

func (l *MemoryReplayLedger) pruneLocked(now time.Time) {
	for key, expiresAt := range l.seen {
		if !now.Before(expiresAt) {
			delete(l.seen, key)
		}
	}
}

func (l *MemoryReplayLedger) evictLocked() {
	var oldest string
	var oldestExpiry time.Time
	for key, expiresAt := range l.seen {
		if oldest == "" || expiresAt.Before(oldestExpiry) {
			oldest = key
			oldestExpiry = expiresAt
		}
	}
	delete(l.seen, oldest)
}

var _ ReplayLedger = (*MemoryReplayLedger)(nil)
