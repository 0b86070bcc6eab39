package patient

import (
	"context"
	"database/sql"
)

// RepositoryInterface defines the contract for patient data access.
// Every method is scoped by the owning clinician's username.
type RepositoryInterface interface {
	Create(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error)
	CreateTx(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error)
	Get(ctx context.Context, clinician string, id int) (*PatientResponse, error)
	Exists(ctx context.Context, clinician string, id int) (bool, error)
	ListWithPagination(ctx context.Context, clinician string, limit, offset int, search string) ([]PatientResponse, int, error)
	Update(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error)
	Delete(ctx context.Context, clinician string, id int) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
