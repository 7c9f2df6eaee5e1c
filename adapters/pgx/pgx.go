// Package pgx is the postgres core.StorageAdapter. Connections come from a
// pgx pool exposed through database/sql so goose can run migrations on it.
package pgx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lborres/quora/adapters/pgx/migrations"
	"github.com/lborres/quora/core"
	"github.com/pressly/goose/v3"
)

// DBTX is the subset of database/sql used by the queries. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Adapter struct {
	db   *sql.DB
	q    DBTX
	pool *pgxpool.Pool // nil when the caller owns db
	inTx bool
}

var _ core.StorageAdapter = (*Adapter)(nil)

func New(db *sql.DB) *Adapter {
	return &Adapter{db: db, q: db}
}

// Open connects to dsn through a pgx pool and pings it.
func Open(ctx context.Context, dsn string) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	a := New(stdlib.OpenDBFromPool(pool))
	a.pool = pool
	return a, nil
}

func (a *Adapter) Close() error {
	err := a.db.Close()
	if a.pool != nil {
		a.pool.Close()
	}
	return err
}

// Migrate applies the embedded schema migrations.
func (a *Adapter) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, a.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// WithTx commits when fn returns nil and rolls back otherwise. A panic in
// fn rolls back and is rethrown. Nested calls join the open transaction.
func (a *Adapter) WithTx(ctx context.Context, fn func(ctx context.Context, tx core.StorageAdapter) error) (err error) {
	if a.inTx {
		return fn(ctx, a)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db begin error: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("db commit error: %w", cerr)
		}
	}()

	return fn(ctx, &Adapter{db: a.db, q: tx, inTx: true})
}
