package treatmentcycle

import "errors"

var ErrTreatmentCycleNotFound = errors.New("treatment cycle not found")
