package patient

import (
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
)

// CreatePatientRequest represents the request to create a new patient
type CreatePatientRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"` // Format: YYYY-MM-DD
	Address     string `json:"address"`
}

// UpdatePatientRequest represents the request to update a patient
type UpdatePatientRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// PaginatedPatientListResponse is the envelope for paginated patient lists
type PaginatedPatientListResponse struct {
	Success    bool              `json:"success"`
	Patients   []PatientResponse `json:"patients"`
	Pagination pagination.Meta   `json:"pagination"`
}

// PatientResponse represents the patient data returned to clients
type PatientResponse struct {
	ID          int        `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	DateOfBirth *string    `json:"dateOfBirth,omitempty"`
	Address     string     `json:"address"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}
