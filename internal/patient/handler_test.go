package patient

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PhysioCare-Clinic/clinic-service/internal/auth"
	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
	"github.com/gorilla/mux"
)

func authedRequest(method, target string, body []byte, vars map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := auth.ContextWithPrincipal(req.Context(), &auth.Principal{
		UserID:   "user-1",
		Username: "anna",
		Roles:    []string{"CLINICIAN"},
	})
	req = req.WithContext(ctx)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

// TestCreatePatient_Created tests the create endpoint success envelope
func TestCreatePatient_Created(t *testing.T) {
	mockSvc := &mockService{
		createPatientFunc: func(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error) {
			return &PatientResponse{ID: 1, FirstName: req.FirstName, LastName: req.LastName}, nil
		},
	}
	handler := NewHandler(mockSvc)

	body := []byte(`{"firstName":"Jan","lastName":"Kowalski"}`)
	req := authedRequest("POST", "/clinic/patients", body, nil)
	rr := httptest.NewRecorder()

	handler.CreatePatient(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rr.Code)
	}
	var resp PatientSuccessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !resp.Success || resp.Patient == nil || resp.Patient.ID != 1 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

// TestCreatePatient_ValidationError tests the 400 mapping for missing names
func TestCreatePatient_ValidationError(t *testing.T) {
	mockSvc := &mockService{
		createPatientFunc: func(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error) {
			return nil, ErrMissingFirstName
		},
	}
	handler := NewHandler(mockSvc)

	req := authedRequest("POST", "/clinic/patients", []byte(`{"lastName":"Kowalski"}`), nil)
	rr := httptest.NewRecorder()

	handler.CreatePatient(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

// TestGetPatient_NotFound tests the 404 mapping
func TestGetPatient_NotFound(t *testing.T) {
	mockSvc := &mockService{
		getPatientFunc: func(ctx context.Context, clinician string, id int) (*PatientResponse, error) {
			return nil, ErrPatientNotFound
		},
	}
	handler := NewHandler(mockSvc)

	req := authedRequest("GET", "/clinic/patients/999", nil, map[string]string{"id": "999"})
	rr := httptest.NewRecorder()

	handler.GetPatient(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
}

// TestGetPatient_Unauthenticated tests the missing-principal path
func TestGetPatient_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest("GET", "/clinic/patients/1", nil)
	rr := httptest.NewRecorder()

	handler.GetPatient(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

// TestListPatients_PassesSearchAndPagination tests query parameter plumbing
func TestListPatients_PassesSearchAndPagination(t *testing.T) {
	mockSvc := &mockService{
		listPatientsFunc: func(ctx context.Context, clinician string, params pagination.Params, search string) (*PaginatedPatientListResponse, error) {
			if params.Page != 2 || params.Limit != 5 {
				t.Errorf("Expected page 2 limit 5, got %+v", params)
			}
			if search != "kowal" {
				t.Errorf("Expected search 'kowal', got %q", search)
			}
			return &PaginatedPatientListResponse{Success: true, Patients: []PatientResponse{}}, nil
		},
	}
	handler := NewHandler(mockSvc)

	req := authedRequest("GET", "/clinic/patients?page=2&limit=5&search=kowal", nil, nil)
	rr := httptest.NewRecorder()

	handler.ListPatients(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
}

// TestDeletePatient_Success tests the delete endpoint
func TestDeletePatient_Success(t *testing.T) {
	mockSvc := &mockService{
		deletePatientFunc: func(ctx context.Context, clinician string, id int) error {
			return nil
		},
	}
	handler := NewHandler(mockSvc)

	req := authedRequest("DELETE", "/clinic/patients/7", nil, map[string]string{"id": "7"})
	rr := httptest.NewRecorder()

	handler.DeletePatient(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
}

// Mock service for testing
type mockService struct {
	createPatientFunc   func(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error)
	createPatientTxFunc func(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error)
	getPatientFunc      func(ctx context.Context, clinician string, id int) (*PatientResponse, error)
	validateFunc        func(ctx context.Context, clinician string, id int) error
	listPatientsFunc    func(ctx context.Context, clinician string, params pagination.Params, search string) (*PaginatedPatientListResponse, error)
	updatePatientFunc   func(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error)
	deletePatientFunc   func(ctx context.Context, clinician string, id int) error
}

func (m *mockService) CreatePatient(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error) {
	if m.createPatientFunc != nil {
		return m.createPatientFunc(ctx, clinician, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) CreatePatientTx(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error) {
	if m.createPatientTxFunc != nil {
		return m.createPatientTxFunc(ctx, tx, clinician, req)
	}
	return 0, errors.New("not implemented")
}

func (m *mockService) GetPatient(ctx context.Context, clinician string, id int) (*PatientResponse, error) {
	if m.getPatientFunc != nil {
		return m.getPatientFunc(ctx, clinician, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) ValidateOwnership(ctx context.Context, clinician string, id int) error {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, clinician, id)
	}
	return errors.New("not implemented")
}

func (m *mockService) ListPatientsWithPagination(ctx context.Context, clinician string, params pagination.Params, search string) (*PaginatedPatientListResponse, error) {
	if m.listPatientsFunc != nil {
		return m.listPatientsFunc(ctx, clinician, params, search)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) UpdatePatient(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error) {
	if m.updatePatientFunc != nil {
		return m.updatePatientFunc(ctx, clinician, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) DeletePatient(ctx context.Context, clinician string, id int) error {
	if m.deletePatientFunc != nil {
		return m.deletePatientFunc(ctx, clinician, id)
	}
	return errors.New("not implemented")
}
