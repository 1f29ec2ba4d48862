package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Open connects to cfg.URL, registers the checkout migrations for the matching
// dialect and applies them. postgres:// URLs use lib/pq; anything else is
// handed to go-sqlite3.
func Open(ctx context.Context, cfg core.DatabaseConfig) (*persistence.Client, error) {
	dsn := sqliteDSN(cfg.GetServer())
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: database url is required")
	}

	driver := cfg.GetDriver()
	dialectName := migrations.DialectSQLite
	var dialect schema.Dialect = sqlitedialect.New()
	if cfg.IsPostgres() {
		dsn = cfg.GetServer()
		dialectName = migrations.DialectPostgres
		dialect = pgdialect.New()
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if dialectName == migrations.DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}

	_, err = migrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithValidationTargets(dialectName))
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return client, nil
}

func sqliteDSN(url string) string {
	url = strings.TrimSpace(url)
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if strings.HasPrefix(strings.ToLower(url), prefix) {
			return url[len(prefix):]
		}
	}
	return url
}
