package patient

import (
	"context"
	"database/sql"

	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
)

// ServiceInterface defines the contract for patient business logic operations
type ServiceInterface interface {
	CreatePatient(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error)
	CreatePatientTx(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error)
	GetPatient(ctx context.Context, clinician string, id int) (*PatientResponse, error)
	ValidateOwnership(ctx context.Context, clinician string, id int) error
	ListPatientsWithPagination(ctx context.Context, clinician string, params pagination.Params, search string) (*PaginatedPatientListResponse, error)
	UpdatePatient(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error)
	DeletePatient(ctx context.Context, clinician string, id int) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
