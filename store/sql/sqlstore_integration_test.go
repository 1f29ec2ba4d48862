package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/goliatone/go-checkout/core"
	checkoutmigrations "github.com/goliatone/go-checkout/migrations"
	sqlstore "github.com/goliatone/go-checkout/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-checkout-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"order_progress_schedules",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "order_progress_schedules" {
		t.Fatalf("expected order_progress_schedules table, got %q", tableName)
	}
}

func TestProgressStore_SaveReplacesScheduleForOrder(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.ProgressStore()
	if store == nil {
		t.Fatalf("expected progress store from factory")
	}

	wake := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := store.Save(ctx, schedule("ord_1", "tok_1", core.OrderStatusPending, wake))
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	if first.NextStatus != core.OrderStatusConfirmed {
		t.Fatalf("unexpected saved schedule %+v", first)
	}

	replacement := schedule("ord_1", "tok_2", core.OrderStatusConfirmed, wake.Add(time.Minute))
	if _, err := store.Save(ctx, replacement); err != nil {
		t.Fatalf("save replacement: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one schedule per order, got %d", len(all))
	}
	got, err := store.Get(ctx, "ord_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "tok_2" || got.CurrentStatus != core.OrderStatusConfirmed || got.NextStatus != core.OrderStatusProcessing {
		t.Fatalf("expected replacement schedule, got %+v", got)
	}
	if !got.WakeAt.Equal(wake.Add(time.Minute)) {
		t.Fatalf("unexpected wake_at %s", got.WakeAt)
	}
	if got.PaymentMethod != "demo_card" {
		t.Fatalf("unexpected payment method %q", got.PaymentMethod)
	}
}

func TestProgressStore_ClaimRequiresLiveToken(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewProgressStore(client.DB())
	if err != nil {
		t.Fatalf("new progress store: %v", err)
	}
	wake := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.Save(ctx, schedule("ord_2", "tok_live", core.OrderStatusPending, wake)); err != nil {
		t.Fatalf("save: %v", err)
	}

	claimed, err := store.Claim(ctx, "ord_2", "tok_stale")
	if err != nil {
		t.Fatalf("claim stale: %v", err)
	}
	if claimed {
		t.Fatalf("expected stale token claim to fail")
	}
	claimed, err = store.Claim(ctx, "ord_2", "tok_live")
	if err != nil || !claimed {
		t.Fatalf("expected live token claim, got claimed=%v err=%v", claimed, err)
	}
	if _, err := store.Get(ctx, "ord_2"); !errors.Is(err, core.ErrScheduleNotFound) {
		t.Fatalf("expected claimed schedule to be gone, got %v", err)
	}
	claimed, err = store.Claim(ctx, "ord_2", "tok_live")
	if err != nil || claimed {
		t.Fatalf("expected second claim to fail, got claimed=%v err=%v", claimed, err)
	}
}

func TestProgressStore_ListDueOrdersByWakeAtAndLimits(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewProgressStore(client.DB())
	if err != nil {
		t.Fatalf("new progress store: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []core.ProgressSchedule{
		schedule("ord_late", "t1", core.OrderStatusPending, now.Add(-time.Second)),
		schedule("ord_early", "t2", core.OrderStatusPending, now.Add(-time.Hour)),
		schedule("ord_future", "t3", core.OrderStatusPending, now.Add(time.Hour)),
		schedule("ord_now", "t4", core.OrderStatusShipped, now),
	}
	for _, item := range seed {
		if _, err := store.Save(ctx, item); err != nil {
			t.Fatalf("save %s: %v", item.OrderID, err)
		}
	}

	due, err := store.ListDue(ctx, now, 0)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 3 {
		t.Fatalf("expected 3 due schedules, got %d", len(due))
	}
	order := []string{due[0].OrderID, due[1].OrderID, due[2].OrderID}
	if order[0] != "ord_early" || order[1] != "ord_late" || order[2] != "ord_now" {
		t.Fatalf("unexpected due order %v", order)
	}

	limited, err := store.ListDue(ctx, now, 2)
	if err != nil {
		t.Fatalf("list due limited: %v", err)
	}
	if len(limited) != 2 || limited[0].OrderID != "ord_early" {
		t.Fatalf("unexpected limited result %+v", limited)
	}
}

func TestProgressStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewProgressStore(client.DB())
	if err != nil {
		t.Fatalf("new progress store: %v", err)
	}
	if err := store.Delete(ctx, "ord_missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if _, err := store.Save(ctx, schedule("ord_3", "tok", core.OrderStatusProcessing, time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "ord_3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "ord_3"); !errors.Is(err, core.ErrScheduleNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestProgressStore_SaveValidatesInput(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewProgressStore(client.DB())
	if err != nil {
		t.Fatalf("new progress store: %v", err)
	}
	if _, err := store.Save(context.Background(), core.ProgressSchedule{Token: "tok"}); err == nil {
		t.Fatalf("expected missing order id to fail")
	}
	if _, err := store.Save(context.Background(), core.ProgressSchedule{OrderID: "ord"}); err == nil {
		t.Fatalf("expected missing token to fail")
	}
	if _, err := sqlstore.NewProgressStore(nil); err == nil {
		t.Fatalf("expected nil db to fail")
	}
}

func TestRepositoryFactory_WithCacheWrapsProgressStore(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	cacheService, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	factory, err := sqlstore.NewRepositoryFactoryFromDB(client.DB(), sqlstore.WithCache(cacheService))
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store, ok := factory.ProgressStore().(*sqlstore.CachedProgressStore)
	if !ok {
		t.Fatalf("expected cached progress store, got %T", factory.ProgressStore())
	}

	wake := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.Save(ctx, schedule("ord_c", "tok_1", core.OrderStatusPending, wake)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Get(ctx, "ord_c"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := store.Save(ctx, schedule("ord_c", "tok_2", core.OrderStatusConfirmed, wake)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := store.Get(ctx, "ord_c")
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if got.Token != "tok_2" {
		t.Fatalf("expected cache invalidation on save, got token %q", got.Token)
	}
}

func TestOpenAppliesMigrationsForSQLiteURL(t *testing.T) {
	ctx := context.Background()
	client, err := sqlstore.Open(ctx, core.DatabaseConfig{
		URL: fmt.Sprintf("file:checkout-open-%d?mode=memory&cache=shared", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = client.Close() }()

	store, err := sqlstore.NewProgressStore(client.DB())
	if err != nil {
		t.Fatalf("new progress store: %v", err)
	}
	if _, err := store.Save(ctx, schedule("ord_open", "tok", core.OrderStatusPending, time.Now())); err != nil {
		t.Fatalf("save after open: %v", err)
	}
	if _, err := sqlstore.Open(ctx, core.DatabaseConfig{}); err == nil {
		t.Fatalf("expected empty url to fail")
	}
}

func schedule(orderID, token string, current core.OrderStatus, wake time.Time) core.ProgressSchedule {
	next, _ := core.NextOrderStatus(current)
	return core.ProgressSchedule{
		OrderID:       orderID,
		CurrentStatus: current,
		NextStatus:    next,
		WakeAt:        wake,
		Token:         token,
		PaymentMethod: "demo_card",
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:checkout-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = checkoutmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != checkoutmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, checkoutmigrations.WithValidationTargets(checkoutmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
