//go:build integration

package photo

import (
	"context"
	"testing"

	"github.com/PhysioCare-Clinic/clinic-service/internal/db"
	"github.com/PhysioCare-Clinic/clinic-service/internal/testutil"
)

// TestRepositoryDeleteByVisit_Integration tests the photo cascade with a real database
func TestRepositoryDeleteByVisit_Integration(t *testing.T) {
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
	visitID := testutil.CreateTestVisit(t, tx, "anna", cycleID, "2026-09-15", "10:00", false)
	for _, name := range []string{"before.jpg", "after.jpg"} {
		if _, err := tx.Exec(
			`INSERT INTO photos (visit_id, file_name, created_at) VALUES ($1, $2, NOW())`,
			visitID, name,
		); err != nil {
			t.Fatalf("Failed to insert photo: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	repo := NewRepository(database)

	count, err := repo.CountByVisit(ctx, visitID)
	if err != nil {
		t.Fatalf("CountByVisit failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 photos, got %d", count)
	}

	tx2, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	deleted, err := repo.DeleteByVisitTx(ctx, tx2, visitID)
	if err != nil {
		t.Fatalf("DeleteByVisitTx failed: %v", err)
	}
	if err := tx2.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted rows, got %d", deleted)
	}

	count, err = repo.CountByVisit(ctx, visitID)
	if err != nil {
		t.Fatalf("CountByVisit failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 photos after delete, got %d", count)
	}
}
