package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// SetupTestDB connects to the local clinic test database. Tests that need a
// real database skip when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := os.Getenv("TEST_DATABASE_URL")
	if connStr == "" {
		connStr = "host=localhost port=5432 user=clinic password=clinic dbname=clinic_test sslmode=disable"
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("Skipping test: test database not reachable: %v", err)
	}

	return db
}

// SetupTestTransaction begins a transaction that is rolled back when the
// test ends, so tests never leave rows behind.
func SetupTestTransaction(t *testing.T) (*sql.DB, *sql.Tx) {
	t.Helper()

	db := SetupTestDB(t)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		db.Close()
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	t.Cleanup(func() {
		tx.Rollback()
		db.Close()
	})

	return db, tx
}

// CleanupTestDB removes all clinic rows. Use when a test cannot run inside a
// single transaction.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range []string{"photos", "visits", "treatment_cycles", "patients"} {
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Logf("Warning: Failed to clean up %s: %v", table, err)
		}
	}
}

// CreateTestPatient inserts a patient for the given clinician and returns its id
func CreateTestPatient(t *testing.T, tx *sql.Tx, clinician, firstName, lastName string) int {
	t.Helper()

	var id int
	err := tx.QueryRow(`
		INSERT INTO patients (clinician_username, first_name, last_name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id
	`, clinician, firstName, lastName).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test patient: %v", err)
	}
	return id
}

// CreateTestTreatmentCycle inserts a treatment cycle for a patient and returns its id
func CreateTestTreatmentCycle(t *testing.T, tx *sql.Tx, clinician string, patientID int) int {
	t.Helper()

	var id int
	err := tx.QueryRow(`
		INSERT INTO treatment_cycles (clinician_username, patient_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id
	`, clinician, patientID).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test treatment cycle: %v", err)
	}
	return id
}

// CreateTestVisit inserts a visit attached to a treatment cycle and returns its id
func CreateTestVisit(t *testing.T, tx *sql.Tx, clinician string, cycleID int, date, startTime string, finished bool) int {
	t.Helper()

	var id int
	err := tx.QueryRow(`
		INSERT INTO visits (clinician_username, treatment_cycle_id, date, start_time, finished, created_at)
		VALUES ($1, $2, NULLIF($3, '')::date, NULLIF($4, '')::time, $5, NOW())
		RETURNING id
	`, clinician, cycleID, date, startTime, finished).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test visit: %v", err)
	}
	return id
}
