package patient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const patientColumns = `id, first_name, last_name, email, phone_number, to_char(date_of_birth, 'YYYY-MM-DD'), address, created_at, updated_at`

func scanPatient(row interface {
	Scan(dest ...interface{}) error
}) (*PatientResponse, error) {
	var patient PatientResponse
	var email sql.NullString
	var phoneNumber sql.NullString
	var dob sql.NullString
	var address sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&patient.ID,
		&patient.FirstName,
		&patient.LastName,
		&email,
		&phoneNumber,
		&dob,
		&address,
		&patient.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		patient.Email = email.String
	}
	if phoneNumber.Valid {
		patient.PhoneNumber = phoneNumber.String
	}
	if dob.Valid {
		patient.DateOfBirth = &dob.String
	}
	if address.Valid {
		patient.Address = address.String
	}
	if updatedAt.Valid {
		patient.UpdatedAt = &updatedAt.Time
	}

	return &patient, nil
}

func (r *Repository) Create(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error) {
	query := `
		INSERT INTO patients
		(clinician_username, first_name, last_name, email, phone_number, date_of_birth, address, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, '')::date, NULLIF($7, ''), $8)
		RETURNING ` + patientColumns

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query,
		clinician,
		req.FirstName,
		req.LastName,
		req.Email,
		req.PhoneNumber,
		req.DateOfBirth,
		req.Address,
		time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert patient: %w", err)
	}

	return patient, nil
}

// CreateTx inserts a patient inside the caller's transaction and returns
// the new id. Used by visit planning flows that create the patient and
// the visit atomically.
func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error) {
	query := `
		INSERT INTO patients
		(clinician_username, first_name, last_name, email, phone_number, date_of_birth, address, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, '')::date, NULLIF($7, ''), $8)
		RETURNING id`

	var id int
	err := tx.QueryRowContext(ctx, query,
		clinician,
		req.FirstName,
		req.LastName,
		req.Email,
		req.PhoneNumber,
		req.DateOfBirth,
		req.Address,
		time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert patient: %w", err)
	}

	return id, nil
}

func (r *Repository) Get(ctx context.Context, clinician string, id int) (*PatientResponse, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE id = $1 AND clinician_username = $2`

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, id, clinician))
	if err == sql.ErrNoRows {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}

	return patient, nil
}

func (r *Repository) Exists(ctx context.Context, clinician string, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1 AND clinician_username = $2)`,
		id, clinician,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check patient existence: %w", err)
	}
	return exists, nil
}

func (r *Repository) ListWithPagination(ctx context.Context, clinician string, limit, offset int, search string) ([]PatientResponse, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM patients
		WHERE clinician_username = $1
		  AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%')`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, clinician, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE clinician_username = $1
		  AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%')
		ORDER BY last_name, first_name
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, clinician, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []PatientResponse
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *patient)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating patients: %w", err)
	}

	return patients, total, nil
}

func (r *Repository) Update(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error) {
	var updates []string
	var args []interface{}
	argIndex := 1

	if req.FirstName != nil {
		updates = append(updates, fmt.Sprintf("first_name = $%d", argIndex))
		args = append(args, *req.FirstName)
		argIndex++
	}
	if req.LastName != nil {
		updates = append(updates, fmt.Sprintf("last_name = $%d", argIndex))
		args = append(args, *req.LastName)
		argIndex++
	}
	if req.Email != nil {
		updates = append(updates, fmt.Sprintf("email = $%d", argIndex))
		args = append(args, *req.Email)
		argIndex++
	}
	if req.PhoneNumber != nil {
		updates = append(updates, fmt.Sprintf("phone_number = $%d", argIndex))
		args = append(args, *req.PhoneNumber)
		argIndex++
	}
	if req.DateOfBirth != nil {
		updates = append(updates, fmt.Sprintf("date_of_birth = NULLIF($%d, '')::date", argIndex))
		args = append(args, *req.DateOfBirth)
		argIndex++
	}
	if req.Address != nil {
		updates = append(updates, fmt.Sprintf("address = $%d", argIndex))
		args = append(args, *req.Address)
		argIndex++
	}

	if len(updates) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	updates = append(updates, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now())
	argIndex++

	args = append(args, id, clinician)

	query := fmt.Sprintf(`
		UPDATE patients
		SET %s
		WHERE id = $%d AND clinician_username = $%d
		RETURNING `+patientColumns,
		strings.Join(updates, ", "), argIndex, argIndex+1)

	patient, err := scanPatient(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	return patient, nil
}

func (r *Repository) Delete(ctx context.Context, clinician string, id int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM patients WHERE id = $1 AND clinician_username = $2`,
		id, clinician,
	)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrPatientNotFound
	}

	return nil
}
