package visit

import (
	"context"
	"database/sql"
)

// RepositoryInterface defines the contract for visit data access.
// Mutating methods run inside the caller's transaction; queries are
// scoped by the owning clinician's username.
type RepositoryInterface interface {
	GetTx(ctx context.Context, tx *sql.Tx, clinician string, id int) (*Visit, error)
	CreateTx(ctx context.Context, tx *sql.Tx, v *Visit) (int, error)
	SaveTx(ctx context.Context, tx *sql.Tx, v *Visit) error
	DeleteTx(ctx context.Context, tx *sql.Tx, clinician string, id int) error
	LastVisitIDTx(ctx context.Context, tx *sql.Tx, clinician string) (int, error)

	FindFinishedVisitInfo(ctx context.Context, clinician string, id int) (*FinishedVisitInfo, error)
	FindIncomingVisitsByPatient(ctx context.Context, clinician string, patientID int) ([]VisitPlanInfo, error)
	FindIncomingVisit(ctx context.Context, clinician string, id int) (*VisitPlanInfo, error)
	FindCalendarEvents(ctx context.Context, clinician string) ([]CalendarEvent, error)
	FindCalendarEvent(ctx context.Context, clinician string, id int) (*CalendarEvent, error)
	ExistsOverlapping(ctx context.Context, clinician string, excludeID int, date, startTime, endTime string) (bool, error)
	FindFinishedByTreatmentCycle(ctx context.Context, clinician string, cycleID, limit, offset int) ([]FinishedVisitInfo, int, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
