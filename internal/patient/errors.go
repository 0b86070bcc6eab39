package patient

import "errors"

var (
	ErrMissingFirstName = errors.New("first name is required")
	ErrMissingLastName  = errors.New("last name is required")
	ErrPatientNotFound  = errors.New("patient not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)
