package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	checkout "github.com/goliatone/go-checkout"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// ScheduleTable is created by the checkout migrations for every dialect.
const ScheduleTable = "order_progress_schedules"

const sourceLabel = "go-checkout"

// dialectOrder is also the registration order.
var dialectOrder = []string{DialectPostgres, DialectSQLite}

var dialectDirs = map[string]string{
	DialectPostgres: "data/sql/migrations",
	DialectSQLite:   "data/sql/migrations/sqlite",
}

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Registration reports what Register handed to the persistence layer.
type Registration struct {
	SourceLabel string
	Dialects    []string
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*registerOptions)

type registerOptions struct {
	targets []string
}

// WithValidationTargets limits registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(o *registerOptions) {
		var next []string
		for _, target := range targets {
			target = strings.ToLower(strings.TrimSpace(target))
			if target == "" || slices.Contains(next, target) {
				continue
			}
			next = append(next, target)
		}
		if len(next) > 0 {
			o.targets = next
		}
	}
}

// Filesystems returns the embedded schedule migrations, one filesystem per
// dialect. Every *.up.sql must ship with its *.down.sql.
func Filesystems() ([]FilesystemSpec, error) {
	root := checkout.GetMigrationsFS()
	out := make([]FilesystemSpec, 0, len(dialectOrder))
	for _, dialect := range dialectOrder {
		dir := dialectDirs[dialect]
		sub, err := fs.Sub(root, dir)
		if err != nil {
			return nil, fmt.Errorf("migrations: resolve %s filesystem: %w", dialect, err)
		}
		if err := checkMigrationPairs(sub, dir); err != nil {
			return nil, err
		}
		out = append(out, FilesystemSpec{Dialect: dialect, Path: dir, FS: sub})
	}
	return out, nil
}

// Register calls registerFn once per targeted dialect, postgres first.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{SourceLabel: sourceLabel}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}
	options := registerOptions{targets: dialectOrder}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	for _, target := range options.targets {
		if _, ok := dialectDirs[target]; !ok {
			return reg, fmt.Errorf("migrations: unsupported dialect %q", target)
		}
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	for _, fsys := range filesystems {
		if !slices.Contains(options.targets, fsys.Dialect) {
			continue
		}
		if err := registerFn(ctx, fsys.Dialect, reg.SourceLabel, fsys.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
		reg.Dialects = append(reg.Dialects, fsys.Dialect)
	}
	return reg, nil
}

func checkMigrationPairs(fsys fs.FS, dir string) error {
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrations: glob %s: %w", dir, err)
	}
	if len(ups) == 0 {
		return fmt.Errorf("migrations: %s has no *.up.sql files", dir)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(fsys, down); err != nil {
			return fmt.Errorf("migrations: %s/%s has no matching %s", dir, up, down)
		}
	}
	return nil
}
