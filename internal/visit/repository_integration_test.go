//go:build integration

package visit

import (
	"context"
	"testing"

	"github.com/PhysioCare-Clinic/clinic-service/internal/db"
	"github.com/PhysioCare-Clinic/clinic-service/internal/testutil"
)

// TestRepositoryExistsOverlapping_Integration tests the double-booking query
// with a real database
func TestRepositoryExistsOverlapping_Integration(t *testing.T) {
	database := testutil.SetupTestDB(t)
	defer database.Close()
	defer testutil.CleanupTestDB(t, database)

	ctx := context.Background()
	if err := db.EnsureSchema(ctx, database); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	patientID := testutil.CreateTestPatient(t, tx, "anna", "Jan", "Kowalski")
	cycleID := testutil.CreateTestTreatmentCycle(t, tx, "anna", patientID)
	existingID := testutil.CreateTestVisit(t, tx, "anna", cycleID, "2026-09-15", "10:00", false)
	if _, err := tx.Exec(
		`UPDATE visits SET end_time = '11:00'::time WHERE id = $1`, existingID,
	); err != nil {
		t.Fatalf("Failed to set end time: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	repo := NewRepository(database)

	// Overlapping slot on the same day
	exists, err := repo.ExistsOverlapping(ctx, "anna", -1, "2026-09-15", "10:30", "11:30")
	if err != nil {
		t.Fatalf("ExistsOverlapping failed: %v", err)
	}
	if !exists {
		t.Error("Expected overlap with the 10:00-11:00 visit")
	}

	// Adjacent slot does not overlap
	exists, err = repo.ExistsOverlapping(ctx, "anna", -1, "2026-09-15", "11:00", "12:00")
	if err != nil {
		t.Fatalf("ExistsOverlapping failed: %v", err)
	}
	if exists {
		t.Error("Expected no overlap for a back-to-back slot")
	}

	// The candidate's own id is excluded
	exists, err = repo.ExistsOverlapping(ctx, "anna", existingID, "2026-09-15", "10:30", "11:30")
	if err != nil {
		t.Fatalf("ExistsOverlapping failed: %v", err)
	}
	if exists {
		t.Error("Expected the excluded visit not to conflict with itself")
	}

	// Another clinician's calendar is unaffected
	exists, err = repo.ExistsOverlapping(ctx, "piotr", -1, "2026-09-15", "10:30", "11:30")
	if err != nil {
		t.Fatalf("ExistsOverlapping failed: %v", err)
	}
	if exists {
		t.Error("Expected no overlap for a different clinician")
	}

	// A finished visit still blocks its slot
	if _, err := database.Exec(
		`UPDATE visits SET finished = true WHERE id = $1`, existingID,
	); err != nil {
		t.Fatalf("Failed to mark visit finished: %v", err)
	}
	exists, err = repo.ExistsOverlapping(ctx, "anna", -1, "2026-09-15", "10:30", "11:30")
	if err != nil {
		t.Fatalf("ExistsOverlapping failed: %v", err)
	}
	if !exists {
		t.Error("Expected overlap with a finished visit occupying the slot")
	}
}

// TestRepositoryLastVisitID_Integration tests the last-created-visit lookup
func TestRepositoryLastVisitID_Integration(t *testing.T) {
	database := testutil.SetupTestDB(t)
	defer database.Close()
	defer testutil.CleanupTestDB(t, database)

	ctx := context.Background()
	if err := db.EnsureSchema(ctx, database); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	patientID := testutil.CreateTestPatient(t, tx, "anna", "Jan", "Kowalski")
	cycleID := testutil.CreateTestTreatmentCycle(t, tx, "anna", patientID)
	testutil.CreateTestVisit(t, tx, "anna", cycleID, "2026-09-15", "10:00", false)
	lastID := testutil.CreateTestVisit(t, tx, "anna", cycleID, "2026-09-16", "10:00", false)

	repo := NewRepository(database)
	got, err := repo.LastVisitIDTx(ctx, tx, "anna")
	if err != nil {
		t.Fatalf("LastVisitIDTx failed: %v", err)
	}
	if got != lastID {
		t.Errorf("Expected last visit id %d, got %d", lastID, got)
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
}
