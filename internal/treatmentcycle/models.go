package treatmentcycle

import "time"

// TreatmentCycle groups a sequence of visits under one injury episode
// for one patient. A cycle with no remaining visits is orphaned and
// gets deleted.
type TreatmentCycle struct {
	ID                int       `json:"id"`
	ClinicianUsername string    `json:"clinicianUsername"`
	PatientID         int       `json:"patientId"`
	InjuryDate        *string   `json:"injuryDate,omitempty"` // Format: YYYY-MM-DD
	InjuryDescription string    `json:"injuryDescription"`
	CreatedAt         time.Time `json:"createdAt"`
}
