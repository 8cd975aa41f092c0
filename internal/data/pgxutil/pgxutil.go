// Package pgxutil lets database/sql handles opened with the pgx stdlib driver
// use native pgx features such as struct scanning.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// ErrNotPgx means the *sql.DB was opened with a driver other than "pgx".
var ErrNotPgx = errors.New("database handle is not backed by the pgx stdlib driver")

// InTx commits when fn returns nil and rolls back otherwise. A failed rollback
// is joined onto the returned error.
func InTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Conn borrows one pooled connection and hands fn the underlying *pgx.Conn.
func Conn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	sqlConn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer func() { _ = sqlConn.Close() }()

	return sqlConn.Raw(func(driverConn any) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return ErrNotPgx
		}
		return fn(c.Conn())
	})
}

// QueryOne scans exactly one row into T, matching columns to `db` tags.
// No rows yields pgx.ErrNoRows.
func QueryOne[T any](ctx context.Context, db *sql.DB, query string, args ...any) (T, error) {
	var out T
	err := Conn(ctx, db, func(c *pgx.Conn) error {
		rows, qErr := c.Query(ctx, query, args...)
		if qErr != nil {
			return qErr
		}
		out, qErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
		return qErr
	})
	return out, err
}
