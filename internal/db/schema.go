package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// EnsureSchema creates the clinic tables if they do not exist yet. The
// service owns its schema; there is no separate migration tool.
func EnsureSchema(ctx context.Context, database *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS patients (
			id SERIAL PRIMARY KEY,
			clinician_username VARCHAR(255) NOT NULL,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			phone_number VARCHAR(50),
			date_of_birth DATE,
			address TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS treatment_cycles (
			id SERIAL PRIMARY KEY,
			clinician_username VARCHAR(255) NOT NULL,
			patient_id INTEGER NOT NULL REFERENCES patients(id),
			injury_date DATE,
			injury_description TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS visits (
			id SERIAL PRIMARY KEY,
			clinician_username VARCHAR(255) NOT NULL,
			treatment_cycle_id INTEGER REFERENCES treatment_cycles(id),
			date DATE,
			start_time TIME,
			end_time TIME,
			finished BOOLEAN NOT NULL DEFAULT FALSE,
			description TEXT,
			diagnosis TEXT,
			treatment TEXT,
			recommendations TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS photos (
			id SERIAL PRIMARY KEY,
			visit_id INTEGER NOT NULL REFERENCES visits(id),
			file_name VARCHAR(255),
			content BYTEA,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_clinician_date ON visits (clinician_username, date)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_cycle ON visits (treatment_cycle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_patient ON treatment_cycles (patient_id)`,
	}

	for _, stmt := range statements {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	log.Println("✓ Database schema ensured")
	return nil
}
