package photo

import (
	"context"
	"database/sql"
)

// RepositoryInterface defines the contract for photo data access
type RepositoryInterface interface {
	CountByVisit(ctx context.Context, visitID int) (int, error)
	DeleteByVisitTx(ctx context.Context, tx *sql.Tx, visitID int) (int64, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
