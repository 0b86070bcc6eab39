package visit

import "errors"

var (
	ErrVisitNotFound = errors.New("visit not found")

	// User-facing messages kept verbatim from the Polish clinic frontend.
	ErrAlreadyFinished     = errors.New("Nie można rozpocząć zakończonej wizyty")
	ErrCancelFinishedVisit = errors.New("Nie można odwołać wizyty, która już się odbyła.")

	ErrTreatmentCycleUnresolved = errors.New("treatment cycle could not be resolved")
	ErrMissingPatientID         = errors.New("patient id is required")
	ErrInvalidDate              = errors.New("invalid date format, expected yyyy-MM-dd")
	ErrInvalidTime              = errors.New("invalid time format, expected HH:mm")
)
