package patient

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
	"github.com/PhysioCare-Clinic/clinic-service/internal/testutil"
)

// TestCreatePatient_Success tests successful patient creation
func TestCreatePatient_Success(t *testing.T) {
	mockRepo := &mockRepository{
		createFunc: func(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error) {
			return &PatientResponse{
				ID:        1,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher, nil)

	created, err := service.CreatePatient(context.Background(), "anna", CreatePatientRequest{
		FirstName: "Jan",
		LastName:  "Kowalski",
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("Expected patient id 1, got %d", created.ID)
	}
	publisher.AssertEventPublished(t, "patient.created")
}

// TestCreatePatient_MissingNames tests name validation
func TestCreatePatient_MissingNames(t *testing.T) {
	service := NewService(&mockRepository{}, nil, nil)

	_, err := service.CreatePatient(context.Background(), "anna", CreatePatientRequest{LastName: "Kowalski"})
	if !errors.Is(err, ErrMissingFirstName) {
		t.Errorf("Expected ErrMissingFirstName, got: %v", err)
	}

	_, err = service.CreatePatient(context.Background(), "anna", CreatePatientRequest{FirstName: "Jan"})
	if !errors.Is(err, ErrMissingLastName) {
		t.Errorf("Expected ErrMissingLastName, got: %v", err)
	}
}

// TestCreatePatientTx_NoEventPublished tests that the transactional variant
// leaves event publishing to the orchestrating flow
func TestCreatePatientTx_NoEventPublished(t *testing.T) {
	mockRepo := &mockRepository{
		createTxFunc: func(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error) {
			return 5, nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher, nil)

	id, err := service.CreatePatientTx(context.Background(), nil, "anna", CreatePatientRequest{
		FirstName: "Jan",
		LastName:  "Kowalski",
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id != 5 {
		t.Errorf("Expected patient id 5, got %d", id)
	}
	publisher.AssertEventNotPublished(t, "patient.created")
}

// TestValidateOwnership_Exists tests ownership validation for an owned patient
func TestValidateOwnership_Exists(t *testing.T) {
	mockRepo := &mockRepository{
		existsFunc: func(ctx context.Context, clinician string, id int) (bool, error) {
			if clinician != "anna" {
				t.Errorf("Expected clinician scope 'anna', got %q", clinician)
			}
			return true, nil
		},
	}
	service := NewService(mockRepo, nil, nil)

	if err := service.ValidateOwnership(context.Background(), "anna", 7); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// TestValidateOwnership_NotOwned tests that absence and foreign ownership
// surface as the same not-found error
func TestValidateOwnership_NotOwned(t *testing.T) {
	mockRepo := &mockRepository{
		existsFunc: func(ctx context.Context, clinician string, id int) (bool, error) {
			return false, nil
		},
	}
	service := NewService(mockRepo, nil, nil)

	err := service.ValidateOwnership(context.Background(), "anna", 7)
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("Expected ErrPatientNotFound, got: %v", err)
	}
}

// TestListPatientsWithPagination tests the paginated list envelope
func TestListPatientsWithPagination(t *testing.T) {
	mockRepo := &mockRepository{
		listFunc: func(ctx context.Context, clinician string, limit, offset int, search string) ([]PatientResponse, int, error) {
			return []PatientResponse{{ID: 1}, {ID: 2}}, 12, nil
		},
	}
	service := NewService(mockRepo, nil, nil)

	params := pagination.Params{Page: 2, Limit: 2}
	resp, err := service.ListPatientsWithPagination(context.Background(), "anna", params, "")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success envelope")
	}
	if len(resp.Patients) != 2 {
		t.Errorf("Expected 2 patients, got %d", len(resp.Patients))
	}
	if resp.Pagination.TotalRecords != 12 {
		t.Errorf("Expected 12 total records, got %d", resp.Pagination.TotalRecords)
	}
	if resp.Pagination.TotalPages != 6 {
		t.Errorf("Expected 6 total pages, got %d", resp.Pagination.TotalPages)
	}
}

// TestDeletePatient_PublishesEvent tests deletion event publishing
func TestDeletePatient_PublishesEvent(t *testing.T) {
	mockRepo := &mockRepository{
		deleteFunc: func(ctx context.Context, clinician string, id int) error {
			return nil
		},
	}
	publisher := testutil.NewMockPublisher()
	service := NewService(mockRepo, publisher, nil)

	if err := service.DeletePatient(context.Background(), "anna", 7); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	publisher.AssertEventPublished(t, "patient.deleted")
}

// Mock repository for testing
type mockRepository struct {
	createFunc   func(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error)
	createTxFunc func(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error)
	getFunc      func(ctx context.Context, clinician string, id int) (*PatientResponse, error)
	existsFunc   func(ctx context.Context, clinician string, id int) (bool, error)
	listFunc     func(ctx context.Context, clinician string, limit, offset int, search string) ([]PatientResponse, int, error)
	updateFunc   func(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error)
	deleteFunc   func(ctx context.Context, clinician string, id int) error
}

func (m *mockRepository) Create(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, clinician, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) CreateTx(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error) {
	if m.createTxFunc != nil {
		return m.createTxFunc(ctx, tx, clinician, req)
	}
	return 0, errors.New("not implemented")
}

func (m *mockRepository) Get(ctx context.Context, clinician string, id int) (*PatientResponse, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, clinician, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Exists(ctx context.Context, clinician string, id int) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, clinician, id)
	}
	return false, errors.New("not implemented")
}

func (m *mockRepository) ListWithPagination(ctx context.Context, clinician string, limit, offset int, search string) ([]PatientResponse, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, clinician, limit, offset, search)
	}
	return nil, 0, errors.New("not implemented")
}

func (m *mockRepository) Update(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, clinician, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Delete(ctx context.Context, clinician string, id int) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, clinician, id)
	}
	return errors.New("not implemented")
}
