package webhooks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryReplayLedgerRejectsRedelivery(t *testing.T) {
	ledger := NewMemoryReplayLedger(time.Minute, 0)
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	ledger.Now = func() time.Time { return now }

	if ok, err := ledger.Claim(context.Background(), "stripe:evt_1", 0); err != nil || !ok {
		t.Fatalf("expected first claim accepted, ok=%v err=%v", ok, err)
	}
	if ok, _ := ledger.Claim(context.Background(), "stripe:evt_1", 0); ok {
		t.Fatalf("expected redelivery to be rejected")
	}

	now = now.Add(time.Minute)
	if ok, _ := ledger.Claim(context.Background(), "stripe:evt_1", 0); !ok {
		t.Fatalf("expected claim after the window to be accepted")
	}
}

func TestMemoryReplayLedgerEvictsClosestToExpiry(t *testing.T) {
	ledger := NewMemoryReplayLedger(time.Hour, 2)
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	ledger.Now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = ledger.Claim(ctx, "a", time.Minute)
	_, _ = ledger.Claim(ctx, "b", 30*time.Minute)
	_, _ = ledger.Claim(ctx, "c", time.Hour)

	if ledger.Len() != 2 {
		t.Fatalf("expected ledger capped at 2, got %d", ledger.Len())
	}
	if ok, _ := ledger.Claim(ctx, "a", time.Minute); !ok {
		t.Fatalf("expected evicted key to be claimable again")
	}
	if ok, _ := ledger.Claim(ctx, "c", time.Hour); ok {
		t.Fatalf("expected recent key to still be held")
	}
}

func TestMemoryReplayLedgerRequiresKey(t *testing.T) {
	ledger := NewMemoryReplayLedger(0, 0)
	if _, err := ledger.Claim(context.Background(), "  ", 0); !errors.Is(err, ErrReplayKeyRequired) {
		t.Fatalf("expected key required error, got %v", err)
	}
}
