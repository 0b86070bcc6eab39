package treatmentcycle

import (
	"context"
	"database/sql"
)

// ServiceInterface defines the contract for treatment cycle lifecycle logic
type ServiceInterface interface {
	CreateForPatientTx(ctx context.Context, tx *sql.Tx, clinician string, patientID int, injuryDate *string, injuryDescription string) (int, error)
	Get(ctx context.Context, clinician string, id int) (*TreatmentCycle, error)
	GetTx(ctx context.Context, tx *sql.Tx, clinician string, id int) (*TreatmentCycle, error)
	SaveTx(ctx context.Context, tx *sql.Tx, cycle *TreatmentCycle) error
	DeleteIfNoVisitsTx(ctx context.Context, tx *sql.Tx, cycleID int) (bool, error)
	OrphanSweep(ctx context.Context) (int, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
