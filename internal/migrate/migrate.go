// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/and161185/storefront/migrations"
)

// Supported dialects. The value is also the migrations directory.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var gooseDialects = map[string]string{
	DialectPostgres: "postgres",
	DialectSQLite:   "sqlite3",
}

// Up runs all pending migrations for dialect against db.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	gd, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("migrate: unsupported dialect %q", dialect)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(gd); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dialect)
}

// UpPostgres opens dsn through the pgx stdlib driver and runs postgres migrations.
func UpPostgres(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return Up(ctx, db, DialectPostgres)
}
