package visit

import (
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
	"github.com/PhysioCare-Clinic/clinic-service/internal/patient"
)

// Visit is a single scheduled or completed clinic appointment. A nil
// TreatmentCycleID means the visit is not attached to any cycle.
type Visit struct {
	ID                int
	ClinicianUsername string
	TreatmentCycleID  *int
	Date              *string // Format: YYYY-MM-DD
	StartTime         *string // Format: HH:MM
	EndTime           *string // Format: HH:MM
	Finished          bool
	Description       *string
	Diagnosis         *string
	Treatment         *string
	Recommendations   *string
	CreatedAt         time.Time
}

// VisitPlan is the payload for planning operations. Absent fields stay
// nil; the wire uses -1 for "no cycle assigned yet".
type VisitPlan struct {
	Date             *string `json:"date"`
	StartTime        *string `json:"startTime"`
	EndTime          *string `json:"endTime"`
	Description      *string `json:"description"`
	TreatmentCycleID *int    `json:"treatmentCycleId"`
}

// PlanVisitForNewPatientRequest carries the nested patient and visit
// sections used when a first visit is booked for an unregistered patient.
type PlanVisitForNewPatientRequest struct {
	Patient patient.CreatePatientRequest `json:"patient"`
	Visit   VisitPlan                    `json:"visit"`
}

// FinishVisitRequest carries the nested visit and treatmentCycle sections
// of the finish payload.
type FinishVisitRequest struct {
	Visit          FinishVisitData    `json:"visit"`
	TreatmentCycle TreatmentCycleData `json:"treatmentCycle"`
}

// FinishVisitData uses the wire convention id == -1 (or absent) for
// "finish without a prior plan" and treatmentCycleId == -1 (or absent)
// for "open a new cycle".
type FinishVisitData struct {
	ID               *int    `json:"id"`
	PatientID        *int    `json:"patientId"`
	TreatmentCycleID *int    `json:"treatmentCycleId"`
	Date             *string `json:"date"`
	StartTime        *string `json:"startTime"`
	EndTime          *string `json:"endTime"`
	Description      *string `json:"description"`
	Diagnosis        *string `json:"diagnosis"`
	Treatment        *string `json:"treatment"`
	Recommendations  *string `json:"recommendations"`
}

// TreatmentCycleData is the cycle section of the finish payload.
type TreatmentCycleData struct {
	InjuryDate        *string `json:"injuryDate"`
	InjuryDescription *string `json:"injuryDescription"`
}

// TimeCheckRequest is the double-booking probe. ID is the candidate
// visit to exclude from the check, -1 when the visit does not exist yet.
type TimeCheckRequest struct {
	ID        int    `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// VisitPlanInfo is the upcoming-visit projection.
type VisitPlanInfo struct {
	ID               int     `json:"id"`
	PatientID        int     `json:"patientId"`
	PatientName      string  `json:"patientName"`
	TreatmentCycleID *int    `json:"treatmentCycleId,omitempty"`
	Date             *string `json:"date"`
	StartTime        *string `json:"startTime"`
	EndTime          *string `json:"endTime"`
}

// FinishedVisitInfo is the full detail record of a completed visit.
type FinishedVisitInfo struct {
	ID               int     `json:"id"`
	PatientID        int     `json:"patientId"`
	PatientName      string  `json:"patientName"`
	TreatmentCycleID *int    `json:"treatmentCycleId,omitempty"`
	Date             *string `json:"date"`
	StartTime        *string `json:"startTime"`
	EndTime          *string `json:"endTime"`
	Description      string  `json:"description"`
	Diagnosis        string  `json:"diagnosis"`
	Treatment        string  `json:"treatment"`
	Recommendations  string  `json:"recommendations"`
}

// CalendarEvent is the lightweight calendar projection of a visit.
type CalendarEvent struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Finished  bool    `json:"finished"`
}

// PaginatedFinishedVisitsResponse is the envelope for finished visits
// listed under a treatment cycle.
type PaginatedFinishedVisitsResponse struct {
	Success    bool                `json:"success"`
	Visits     []FinishedVisitInfo `json:"visits"`
	Pagination pagination.Meta     `json:"pagination"`
}
