package photo

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CountByVisit returns the number of photos attached to a visit.
func (r *Repository) CountByVisit(ctx context.Context, visitID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM photos WHERE visit_id = $1`,
		visitID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// DeleteByVisitTx removes every photo attached to a visit inside the
// caller's transaction. Visit deletion must remove its photos first.
func (r *Repository) DeleteByVisitTx(ctx context.Context, tx *sql.Tx, visitID int) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM photos WHERE visit_id = $1`,
		visitID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete photos for visit %d: %w", visitID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
