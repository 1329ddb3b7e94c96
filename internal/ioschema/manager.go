// Package ioschema implements the SchemaManager interface for
// database schema management. This is an impure I/O package that
// wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/gamedex/gdb/pkg/db"
	"github.com/gamedex/gdb/pkg/gdb"
	"github.com/gamedex/gdb/pkg/schema"
	"github.com/gnames/gn"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// manager implements gdb.SchemaManager using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a SchemaManager.
func NewManager(op db.Operator) gdb.SchemaManager {
	return &manager{operator: op}
}

// Create creates or updates the database schema with GORM
// AutoMigrate. With drop, all existing tables go first; cached
// documents and crawl cursors are lost with them.
func (m *manager) Create(ctx context.Context, drop bool) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	if drop {
		gn.Info("Dropping all tables")
		if err := m.operator.DropAllTables(ctx); err != nil {
			return err
		}
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	// Byte-order collation on slug columns keeps list ordering
	// identical across locales.
	if err := m.setCollation(ctx); err != nil {
		return err
	}

	slog.Info("Schema is up to date", "tables", len(schema.AllModels()))
	gn.Info("Database schema created or updated")
	return nil
}

// setCollation sets "C" collation on the slug columns used for
// ordered listings.
func (m *manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{"games", "slug", 255},
		{"platforms", "slug", 255},
		{"genres", "slug", 255},
		{"companies", "slug", 255},
	}

	qStr := `ALTER TABLE %s ALTER COLUMN %s ` +
		`TYPE VARCHAR(%d) COLLATE "C"`

	for _, col := range columns {
		q := formatCollationSQL(qStr, col.table, col.column, col.varchar)
		if _, err := pool.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}
