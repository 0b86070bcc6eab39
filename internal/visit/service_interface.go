package visit

import (
	"context"
	"database/sql"

	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
	"github.com/PhysioCare-Clinic/clinic-service/internal/patient"
	"github.com/PhysioCare-Clinic/clinic-service/internal/treatmentcycle"
)

// ServiceInterface defines the contract for visit business logic operations
type ServiceInterface interface {
	GetFinishedVisitInfo(ctx context.Context, clinician string, visitID int) (*FinishedVisitInfo, error)
	GetIncomingVisits(ctx context.Context, clinician string, patientID int) ([]VisitPlanInfo, error)
	GetIncomingVisit(ctx context.Context, clinician string, visitID int) (*VisitPlanInfo, error)
	GetCalendarEvents(ctx context.Context, clinician string) ([]CalendarEvent, error)
	GetCalendarEvent(ctx context.Context, clinician string, visitID int) (*CalendarEvent, error)
	IsVisitPlannedInGivenTime(ctx context.Context, clinician string, req TimeCheckRequest) (bool, error)
	GetFinishedVisitsByTreatmentCycle(ctx context.Context, clinician string, cycleID int, params pagination.Params) (*PaginatedFinishedVisitsResponse, error)

	PlanFirstVisit(ctx context.Context, clinician string, plan VisitPlan, patientID int) (int, error)
	PlanNextVisit(ctx context.Context, clinician string, plan VisitPlan) (int, error)
	PlanVisitForNewPatient(ctx context.Context, clinician string, req PlanVisitForNewPatientRequest) (int, error)
	UpdateVisitPlan(ctx context.Context, clinician string, visitID int, newPlan VisitPlan) (int, error)
	CancelVisit(ctx context.Context, clinician string, visitID int) error
	FinishVisit(ctx context.Context, clinician string, req FinishVisitRequest) (int, error)
}

// PatientService is the patient collaborator used by visit flows.
type PatientService interface {
	ValidateOwnership(ctx context.Context, clinician string, patientID int) error
	CreatePatientTx(ctx context.Context, tx *sql.Tx, clinician string, req patient.CreatePatientRequest) (int, error)
}

// TreatmentCycleService owns the cycle lifecycle, including the
// delete-when-orphaned rule.
type TreatmentCycleService interface {
	CreateForPatientTx(ctx context.Context, tx *sql.Tx, clinician string, patientID int, injuryDate *string, injuryDescription string) (int, error)
	GetTx(ctx context.Context, tx *sql.Tx, clinician string, id int) (*treatmentcycle.TreatmentCycle, error)
	SaveTx(ctx context.Context, tx *sql.Tx, cycle *treatmentcycle.TreatmentCycle) error
	DeleteIfNoVisitsTx(ctx context.Context, tx *sql.Tx, cycleID int) (bool, error)
}

// PhotoRepository removes a cancelled visit's attachments in the same
// transaction.
type PhotoRepository interface {
	DeleteByVisitTx(ctx context.Context, tx *sql.Tx, visitID int) (int64, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
