package treatmentcycle

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const cycleColumns = `id, clinician_username, patient_id, to_char(injury_date, 'YYYY-MM-DD'), injury_description, created_at`

func scanCycle(row interface {
	Scan(dest ...interface{}) error
}) (*TreatmentCycle, error) {
	var cycle TreatmentCycle
	var injuryDate sql.NullString
	var injuryDescription sql.NullString

	err := row.Scan(
		&cycle.ID,
		&cycle.ClinicianUsername,
		&cycle.PatientID,
		&injuryDate,
		&injuryDescription,
		&cycle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if injuryDate.Valid {
		cycle.InjuryDate = &injuryDate.String
	}
	if injuryDescription.Valid {
		cycle.InjuryDescription = injuryDescription.String
	}

	return &cycle, nil
}

// CreateTx inserts a cycle inside the caller's transaction. Cycles are
// only ever created as part of visit planning or finishing flows.
func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, clinician string, patientID int, injuryDate *string, injuryDescription string) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx, `
		INSERT INTO treatment_cycles (clinician_username, patient_id, injury_date, injury_description, created_at)
		VALUES ($1, $2, $3::date, NULLIF($4, ''), $5)
		RETURNING id`,
		clinician, patientID, injuryDate, injuryDescription, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert treatment cycle: %w", err)
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, clinician string, id int) (*TreatmentCycle, error) {
	cycle, err := scanCycle(r.db.QueryRowContext(ctx, `
		SELECT `+cycleColumns+`
		FROM treatment_cycles
		WHERE id = $1 AND clinician_username = $2`,
		id, clinician,
	))
	if err == sql.ErrNoRows {
		return nil, ErrTreatmentCycleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query treatment cycle: %w", err)
	}
	return cycle, nil
}

func (r *Repository) GetTx(ctx context.Context, tx *sql.Tx, clinician string, id int) (*TreatmentCycle, error) {
	cycle, err := scanCycle(tx.QueryRowContext(ctx, `
		SELECT `+cycleColumns+`
		FROM treatment_cycles
		WHERE id = $1 AND clinician_username = $2`,
		id, clinician,
	))
	if err == sql.ErrNoRows {
		return nil, ErrTreatmentCycleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query treatment cycle: %w", err)
	}
	return cycle, nil
}

// SaveTx updates the mutable injury fields of an existing cycle.
// Patient and clinician references are immutable post-creation.
func (r *Repository) SaveTx(ctx context.Context, tx *sql.Tx, cycle *TreatmentCycle) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE treatment_cycles
		SET injury_date = $1::date, injury_description = NULLIF($2, '')
		WHERE id = $3`,
		cycle.InjuryDate, cycle.InjuryDescription, cycle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update treatment cycle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTreatmentCycleNotFound
	}

	return nil
}

func (r *Repository) CountVisitsTx(ctx context.Context, tx *sql.Tx, cycleID int) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits WHERE treatment_cycle_id = $1`,
		cycleID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits for cycle %d: %w", cycleID, err)
	}
	return count, nil
}

func (r *Repository) DeleteTx(ctx context.Context, tx *sql.Tx, id int) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM treatment_cycles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete treatment cycle: %w", err)
	}
	return nil
}

// DeleteOrphans removes every cycle that no visit references and returns
// the deleted rows. Used by the cleanup job.
func (r *Repository) DeleteOrphans(ctx context.Context) ([]TreatmentCycle, error) {
	rows, err := r.db.QueryContext(ctx, `
		DELETE FROM treatment_cycles tc
		WHERE NOT EXISTS (SELECT 1 FROM visits v WHERE v.treatment_cycle_id = tc.id)
		RETURNING `+cycleColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to delete orphaned cycles: %w", err)
	}
	defer rows.Close()

	var deleted []TreatmentCycle
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deleted cycle: %w", err)
		}
		deleted = append(deleted, *cycle)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deleted cycles: %w", err)
	}

	return deleted, nil
}
