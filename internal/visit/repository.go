package visit

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

const visitColumns = `id, clinician_username, treatment_cycle_id,
	to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	finished, description, diagnosis, treatment, recommendations, created_at`

func (r *Repository) GetTx(ctx context.Context, tx *sql.Tx, clinician string, id int) (*Visit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM visits
		WHERE id = $1 AND clinician_username = $2`

	var v Visit
	var cycleID sql.NullInt64
	var date, startTime, endTime sql.NullString
	var description, diagnosis, treatment, recommendations sql.NullString

	err := tx.QueryRowContext(ctx, query, id, clinician).Scan(
		&v.ID,
		&v.ClinicianUsername,
		&cycleID,
		&date,
		&startTime,
		&endTime,
		&v.Finished,
		&description,
		&diagnosis,
		&treatment,
		&recommendations,
		&v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query visit: %w", err)
	}

	if cycleID.Valid {
		id := int(cycleID.Int64)
		v.TreatmentCycleID = &id
	}
	if date.Valid {
		v.Date = &date.String
	}
	if startTime.Valid {
		v.StartTime = &startTime.String
	}
	if endTime.Valid {
		v.EndTime = &endTime.String
	}
	if description.Valid {
		v.Description = &description.String
	}
	if diagnosis.Valid {
		v.Diagnosis = &diagnosis.String
	}
	if treatment.Valid {
		v.Treatment = &treatment.String
	}
	if recommendations.Valid {
		v.Recommendations = &recommendations.String
	}

	return &v, nil
}

func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, v *Visit) (int, error) {
	query := `
		INSERT INTO visits
		(clinician_username, treatment_cycle_id, date, start_time, end_time, finished, description, diagnosis, treatment, recommendations, created_at)
		VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id int
	err := tx.QueryRowContext(ctx, query,
		v.ClinicianUsername,
		v.TreatmentCycleID,
		v.Date,
		v.StartTime,
		v.EndTime,
		v.Finished,
		v.Description,
		v.Diagnosis,
		v.Treatment,
		v.Recommendations,
		time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert visit: %w", err)
	}

	v.ID = id
	return id, nil
}

func (r *Repository) SaveTx(ctx context.Context, tx *sql.Tx, v *Visit) error {
	query := `
		UPDATE visits
		SET treatment_cycle_id = $1,
		    date = $2::date,
		    start_time = $3::time,
		    end_time = $4::time,
		    finished = $5,
		    description = $6,
		    diagnosis = $7,
		    treatment = $8,
		    recommendations = $9
		WHERE id = $10 AND clinician_username = $11`

	result, err := tx.ExecContext(ctx, query,
		v.TreatmentCycleID,
		v.Date,
		v.StartTime,
		v.EndTime,
		v.Finished,
		v.Description,
		v.Diagnosis,
		v.Treatment,
		v.Recommendations,
		v.ID,
		v.ClinicianUsername,
	)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVisitNotFound
	}

	return nil
}

func (r *Repository) DeleteTx(ctx context.Context, tx *sql.Tx, clinician string, id int) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM visits WHERE id = $1 AND clinician_username = $2`,
		id, clinician,
	)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVisitNotFound
	}

	return nil
}

// LastVisitIDTx returns the id of the clinician's most recently created
// visit within the current transaction.
func (r *Repository) LastVisitIDTx(ctx context.Context, tx *sql.Tx, clinician string) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM visits WHERE clinician_username = $1 ORDER BY id DESC LIMIT 1`,
		clinician,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrVisitNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query last visit: %w", err)
	}
	return id, nil
}

const finishedVisitColumns = `v.id, COALESCE(p.id, 0), COALESCE(TRIM(CONCAT(p.first_name, ' ', p.last_name)), ''),
	v.treatment_cycle_id,
	to_char(v.date, 'YYYY-MM-DD'), to_char(v.start_time, 'HH24:MI'), to_char(v.end_time, 'HH24:MI'),
	COALESCE(v.description, ''), COALESCE(v.diagnosis, ''), COALESCE(v.treatment, ''), COALESCE(v.recommendations, '')`

const finishedVisitJoins = `
	FROM visits v
	LEFT JOIN treatment_cycles tc ON v.treatment_cycle_id = tc.id
	LEFT JOIN patients p ON tc.patient_id = p.id`

func scanFinishedVisit(row interface {
	Scan(dest ...interface{}) error
}) (*FinishedVisitInfo, error) {
	var info FinishedVisitInfo
	var cycleID sql.NullInt64
	var date, startTime, endTime sql.NullString

	err := row.Scan(
		&info.ID,
		&info.PatientID,
		&info.PatientName,
		&cycleID,
		&date,
		&startTime,
		&endTime,
		&info.Description,
		&info.Diagnosis,
		&info.Treatment,
		&info.Recommendations,
	)
	if err != nil {
		return nil, err
	}

	if cycleID.Valid {
		id := int(cycleID.Int64)
		info.TreatmentCycleID = &id
	}
	if date.Valid {
		info.Date = &date.String
	}
	if startTime.Valid {
		info.StartTime = &startTime.String
	}
	if endTime.Valid {
		info.EndTime = &endTime.String
	}

	return &info, nil
}

func (r *Repository) FindFinishedVisitInfo(ctx context.Context, clinician string, id int) (*FinishedVisitInfo, error) {
	query := `SELECT ` + finishedVisitColumns + finishedVisitJoins + `
		WHERE v.id = $1 AND v.clinician_username = $2 AND v.finished`

	info, err := scanFinishedVisit(r.db.QueryRowContext(ctx, query, id, clinician))
	if err == sql.ErrNoRows {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query finished visit: %w", err)
	}
	return info, nil
}

const planColumns = `v.id, COALESCE(p.id, 0), COALESCE(TRIM(CONCAT(p.first_name, ' ', p.last_name)), ''),
	v.treatment_cycle_id,
	to_char(v.date, 'YYYY-MM-DD'), to_char(v.start_time, 'HH24:MI'), to_char(v.end_time, 'HH24:MI')`

func scanPlan(row interface {
	Scan(dest ...interface{}) error
}) (*VisitPlanInfo, error) {
	var info VisitPlanInfo
	var cycleID sql.NullInt64
	var date, startTime, endTime sql.NullString

	err := row.Scan(
		&info.ID,
		&info.PatientID,
		&info.PatientName,
		&cycleID,
		&date,
		&startTime,
		&endTime,
	)
	if err != nil {
		return nil, err
	}

	if cycleID.Valid {
		id := int(cycleID.Int64)
		info.TreatmentCycleID = &id
	}
	if date.Valid {
		info.Date = &date.String
	}
	if startTime.Valid {
		info.StartTime = &startTime.String
	}
	if endTime.Valid {
		info.EndTime = &endTime.String
	}

	return &info, nil
}

func (r *Repository) FindIncomingVisitsByPatient(ctx context.Context, clinician string, patientID int) ([]VisitPlanInfo, error) {
	query := `SELECT ` + planColumns + finishedVisitJoins + `
		WHERE tc.patient_id = $1
		  AND v.clinician_username = $2
		  AND NOT v.finished
		  AND v.date >= CURRENT_DATE
		ORDER BY v.date, v.start_time`

	rows, err := r.db.QueryContext(ctx, query, patientID, clinician)
	if err != nil {
		return nil, fmt.Errorf("failed to query incoming visits: %w", err)
	}
	defer rows.Close()

	var visits []VisitPlanInfo
	for rows.Next() {
		info, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incoming visit: %w", err)
		}
		visits = append(visits, *info)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incoming visits: %w", err)
	}

	return visits, nil
}

func (r *Repository) FindIncomingVisit(ctx context.Context, clinician string, id int) (*VisitPlanInfo, error) {
	query := `SELECT ` + planColumns + finishedVisitJoins + `
		WHERE v.id = $1 AND v.clinician_username = $2 AND NOT v.finished`

	info, err := scanPlan(r.db.QueryRowContext(ctx, query, id, clinician))
	if err == sql.ErrNoRows {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query incoming visit: %w", err)
	}
	return info, nil
}

const calendarColumns = `v.id, COALESCE(TRIM(CONCAT(p.first_name, ' ', p.last_name)), ''),
	to_char(v.date, 'YYYY-MM-DD'), to_char(v.start_time, 'HH24:MI'), to_char(v.end_time, 'HH24:MI'), v.finished`

func scanCalendarEvent(row interface {
	Scan(dest ...interface{}) error
}) (*CalendarEvent, error) {
	var event CalendarEvent
	var date, startTime, endTime sql.NullString

	err := row.Scan(
		&event.ID,
		&event.Title,
		&date,
		&startTime,
		&endTime,
		&event.Finished,
	)
	if err != nil {
		return nil, err
	}

	if date.Valid {
		event.Date = &date.String
	}
	if startTime.Valid {
		event.StartTime = &startTime.String
	}
	if endTime.Valid {
		event.EndTime = &endTime.String
	}

	return &event, nil
}

func (r *Repository) FindCalendarEvents(ctx context.Context, clinician string) ([]CalendarEvent, error) {
	query := `SELECT ` + calendarColumns + finishedVisitJoins + `
		WHERE v.clinician_username = $1
		ORDER BY v.date, v.start_time`

	rows, err := r.db.QueryContext(ctx, query, clinician)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []CalendarEvent
	for rows.Next() {
		event, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		events = append(events, *event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar events: %w", err)
	}

	return events, nil
}

func (r *Repository) FindCalendarEvent(ctx context.Context, clinician string, id int) (*CalendarEvent, error) {
	query := `SELECT ` + calendarColumns + finishedVisitJoins + `
		WHERE v.id = $1 AND v.clinician_username = $2`

	event, err := scanCalendarEvent(r.db.QueryRowContext(ctx, query, id, clinician))
	if err == sql.ErrNoRows {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar event: %w", err)
	}
	return event, nil
}

// ExistsOverlapping reports whether any other visit of the clinician
// overlaps the candidate date and time range. Finished visits still
// occupy their slot.
func (r *Repository) ExistsOverlapping(ctx context.Context, clinician string, excludeID int, date, startTime, endTime string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM visits
			WHERE clinician_username = $1
			  AND id <> $2
			  AND date = $3::date
			  AND start_time < $5::time
			  AND end_time > $4::time
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, clinician, excludeID, date, startTime, endTime).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check visit overlap: %w", err)
	}
	return exists, nil
}

func (r *Repository) FindFinishedByTreatmentCycle(ctx context.Context, clinician string, cycleID, limit, offset int) ([]FinishedVisitInfo, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM visits
		WHERE treatment_cycle_id = $1 AND clinician_username = $2 AND finished`,
		cycleID, clinician,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count finished visits: %w", err)
	}

	query := `SELECT ` + finishedVisitColumns + finishedVisitJoins + `
		WHERE v.treatment_cycle_id = $1 AND v.clinician_username = $2 AND v.finished
		ORDER BY v.date, v.start_time
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, cycleID, clinician, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query finished visits: %w", err)
	}
	defer rows.Close()

	var visits []FinishedVisitInfo
	for rows.Next() {
		info, err := scanFinishedVisit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan finished visit: %w", err)
		}
		visits = append(visits, *info)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating finished visits: %w", err)
	}

	return visits, total, nil
}
