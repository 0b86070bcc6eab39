package treatmentcycle

import (
	"context"
	"database/sql"
)

// RepositoryInterface defines the contract for treatment cycle data access
type RepositoryInterface interface {
	CreateTx(ctx context.Context, tx *sql.Tx, clinician string, patientID int, injuryDate *string, injuryDescription string) (int, error)
	Get(ctx context.Context, clinician string, id int) (*TreatmentCycle, error)
	GetTx(ctx context.Context, tx *sql.Tx, clinician string, id int) (*TreatmentCycle, error)
	SaveTx(ctx context.Context, tx *sql.Tx, cycle *TreatmentCycle) error
	CountVisitsTx(ctx context.Context, tx *sql.Tx, cycleID int) (int, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, id int) error
	DeleteOrphans(ctx context.Context) ([]TreatmentCycle, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
