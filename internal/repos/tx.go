package repos

import (
	"context"
	"database/sql"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// inTx runs fn inside a transaction, committing only if fn returns nil.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// mustAffect turns a zero-row write into sql.ErrNoRows.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func IsNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

func dateArg(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanDate(ns sql.NullString) (*civil.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
