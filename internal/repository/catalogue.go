package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// namedReturningID runs a named upsert ending in RETURNING id and stores the
// id of the written row in dest. On the conflict path that is the id of the
// row that already existed.
func namedReturningID(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}, dest *string) error {
	bound, args, err := exec.BindNamed(query, arg)
	if err != nil {
		return err
	}
	return exec.QueryRowxContext(ctx, bound, args...).Scan(dest)
}

// deactivate soft deletes a catalogue row. Rows that are missing or already
// inactive yield sql.ErrNoRows.
func deactivate(ctx context.Context, db *sqlx.DB, table, id string) error {
	query := fmt.Sprintf("UPDATE %s SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND is_active = TRUE", table)
	result, err := db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
