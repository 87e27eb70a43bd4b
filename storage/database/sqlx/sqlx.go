// Package sqlxrepos implements the domain repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// namedGet binds arg to the named query and scans the single returned row into dest.
func namedGet(ctx context.Context, db *sqlx.DB, dest interface{}, query string, arg interface{}) error {
	q, args, err := db.BindNamed(query, arg)
	if err != nil {
		return errors.Wrap(err, "binding named query")
	}
	return db.QueryRowxContext(ctx, q, args...).StructScan(dest)
}

// execOne runs query and returns errNotFound when no row was affected.
func execOne(ctx context.Context, db *sqlx.DB, errNotFound error, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "executing query")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

// validID reports whether id can be compared against a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
