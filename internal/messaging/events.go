package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys as constants
const (
	// Visit events
	EventVisitPlanned   = "visit.planned"
	EventVisitUpdated   = "visit.updated"
	EventVisitCancelled = "visit.cancelled"
	EventVisitFinished  = "visit.finished"

	// Patient events
	EventPatientCreated = "patient.created"
	EventPatientUpdated = "patient.updated"
	EventPatientDeleted = "patient.deleted"

	// Treatment cycle events
	EventTreatmentCycleCreated = "treatment_cycle.created"
	EventTreatmentCycleDeleted = "treatment_cycle.deleted"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// VisitPlannedEvent represents a new visit being scheduled
type VisitPlannedEvent struct {
	BaseEvent
	Data VisitPlannedData `json:"data"`
}

type VisitPlannedData struct {
	VisitID           int       `json:"visit_id"`
	TreatmentCycleID  int       `json:"treatment_cycle_id,omitempty"`
	PatientID         int       `json:"patient_id,omitempty"`
	ClinicianUsername string    `json:"clinician_username"`
	Date              string    `json:"date,omitempty"`
	StartTime         string    `json:"start_time,omitempty"`
	EndTime           string    `json:"end_time,omitempty"`
	PlannedAt         time.Time `json:"planned_at"`
}

// VisitUpdatedEvent represents a visit plan being changed
type VisitUpdatedEvent struct {
	BaseEvent
	Data VisitUpdatedData `json:"data"`
}

type VisitUpdatedData struct {
	VisitID           int       `json:"visit_id"`
	TreatmentCycleID  int       `json:"treatment_cycle_id,omitempty"`
	ClinicianUsername string    `json:"clinician_username"`
	Date              string    `json:"date,omitempty"`
	StartTime         string    `json:"start_time,omitempty"`
	EndTime           string    `json:"end_time,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// VisitCancelledEvent represents a planned visit being removed
type VisitCancelledEvent struct {
	BaseEvent
	Data VisitCancelledData `json:"data"`
}

type VisitCancelledData struct {
	VisitID           int       `json:"visit_id"`
	TreatmentCycleID  int       `json:"treatment_cycle_id,omitempty"`
	ClinicianUsername string    `json:"clinician_username"`
	CancelledAt       time.Time `json:"cancelled_at"`
}

// VisitFinishedEvent represents a visit being completed with medical details
type VisitFinishedEvent struct {
	BaseEvent
	Data VisitFinishedData `json:"data"`
}

type VisitFinishedData struct {
	VisitID           int       `json:"visit_id"`
	TreatmentCycleID  int       `json:"treatment_cycle_id"`
	PatientID         int       `json:"patient_id"`
	ClinicianUsername string    `json:"clinician_username"`
	FinishedAt        time.Time `json:"finished_at"`
}

// PatientCreatedEvent represents a patient registration event
type PatientCreatedEvent struct {
	BaseEvent
	Data PatientCreatedData `json:"data"`
}

type PatientCreatedData struct {
	PatientID         int       `json:"patient_id"`
	ClinicianUsername string    `json:"clinician_username"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email,omitempty"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PatientUpdatedEvent represents a patient data change event
type PatientUpdatedEvent struct {
	BaseEvent
	Data PatientUpdatedData `json:"data"`
}

type PatientUpdatedData struct {
	PatientID         int       `json:"patient_id"`
	ClinicianUsername string    `json:"clinician_username"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PatientDeletedEvent represents a patient removal event
type PatientDeletedEvent struct {
	BaseEvent
	Data PatientDeletedData `json:"data"`
}

type PatientDeletedData struct {
	PatientID         int       `json:"patient_id"`
	ClinicianUsername string    `json:"clinician_username"`
	DeletedAt         time.Time `json:"deleted_at"`
}

// TreatmentCycleCreatedEvent represents a new treatment cycle being opened
type TreatmentCycleCreatedEvent struct {
	BaseEvent
	Data TreatmentCycleCreatedData `json:"data"`
}

type TreatmentCycleCreatedData struct {
	TreatmentCycleID  int       `json:"treatment_cycle_id"`
	PatientID         int       `json:"patient_id"`
	ClinicianUsername string    `json:"clinician_username"`
	InjuryDate        string    `json:"injury_date,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// TreatmentCycleDeletedEvent represents an orphaned cycle being removed
type TreatmentCycleDeletedEvent struct {
	BaseEvent
	Data TreatmentCycleDeletedData `json:"data"`
}

type TreatmentCycleDeletedData struct {
	TreatmentCycleID int       `json:"treatment_cycle_id"`
	PatientID        int       `json:"patient_id"`
	DeletedAt        time.Time `json:"deleted_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(), // Explicitly set to UTC
		ServiceName: "clinic-service",
	}
}
