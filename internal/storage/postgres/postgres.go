// Package postgres stores the menu catalog in PostgreSQL.
package postgres

import (
	"context"
	"io/fs"
	"sort"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/menukart/db"
)

// migrationLock serializes migrations between the server and seed-db.
const migrationLock = 0x6d656e75

// NewPool creates a pgxpool.Pool with shopspring/decimal registered for
// NUMERIC columns and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database config")
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = "menukart"
	}
	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping")
	}
	return pool, nil
}

// RunMigrations applies the embedded migrations in name order within one
// transaction. Every migration is idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	return runMigrations(ctx, pool, db.Migrations)
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	names, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return errors.Wrap(err, "list migrations")
	}
	sort.Strings(names)

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLock); err != nil {
			return errors.Wrap(err, "acquire migration lock")
		}
		for _, name := range names {
			ddl, err := fs.ReadFile(fsys, name)
			if err != nil {
				return errors.Wrapf(err, "read %s", name)
			}
			if _, err := tx.Exec(ctx, string(ddl)); err != nil {
				return errors.Wrapf(err, "apply %s", name)
			}
		}
		return nil
	})
}
