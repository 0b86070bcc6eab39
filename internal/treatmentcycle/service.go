package treatmentcycle

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/messaging"
	"github.com/PhysioCare-Clinic/clinic-service/internal/telemetry"
)

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
	}
}

// CreateForPatientTx opens a new cycle for a patient inside the caller's
// transaction and returns its id.
func (s *Service) CreateForPatientTx(ctx context.Context, tx *sql.Tx, clinician string, patientID int, injuryDate *string, injuryDescription string) (int, error) {
	id, err := s.repo.CreateTx(ctx, tx, clinician, patientID, injuryDate, injuryDescription)
	if err != nil {
		return 0, fmt.Errorf("failed to create treatment cycle: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTreatmentCycleOperation(ctx, "create")
	}

	return id, nil
}

func (s *Service) Get(ctx context.Context, clinician string, id int) (*TreatmentCycle, error) {
	return s.repo.Get(ctx, clinician, id)
}

func (s *Service) GetTx(ctx context.Context, tx *sql.Tx, clinician string, id int) (*TreatmentCycle, error) {
	return s.repo.GetTx(ctx, tx, clinician, id)
}

func (s *Service) SaveTx(ctx context.Context, tx *sql.Tx, cycle *TreatmentCycle) error {
	return s.repo.SaveTx(ctx, tx, cycle)
}

// DeleteIfNoVisitsTx deletes the cycle when no visit references it any
// more. Safe to call redundantly: unknown, zero and negative ids are a
// no-op, as is a cycle that still has visits. Reports whether a delete
// happened.
func (s *Service) DeleteIfNoVisitsTx(ctx context.Context, tx *sql.Tx, cycleID int) (bool, error) {
	if cycleID <= 0 {
		return false, nil
	}

	count, err := s.repo.CountVisitsTx(ctx, tx, cycleID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if err := s.repo.DeleteTx(ctx, tx, cycleID); err != nil {
		return false, err
	}

	if s.metrics != nil {
		s.metrics.RecordTreatmentCycleOperation(ctx, "delete_orphaned")
	}

	return true, nil
}

// OrphanSweep deletes every orphaned cycle and publishes a deletion event
// per cycle. Run periodically by the cleanup job as a safety net behind
// the per-operation orphan checks.
func (s *Service) OrphanSweep(ctx context.Context) (int, error) {
	deleted, err := s.repo.DeleteOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("orphan sweep failed: %w", err)
	}

	for _, cycle := range deleted {
		s.publishDeleted(ctx, cycle)
		if s.metrics != nil {
			s.metrics.RecordTreatmentCycleOperation(ctx, "delete_orphaned")
		}
	}

	if len(deleted) > 0 {
		log.Printf("✓ Orphan sweep removed %d treatment cycle(s)", len(deleted))
	}

	return len(deleted), nil
}

func (s *Service) publishDeleted(ctx context.Context, cycle TreatmentCycle) {
	if s.publisher == nil {
		return
	}
	event := messaging.TreatmentCycleDeletedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventTreatmentCycleDeleted),
		Data: messaging.TreatmentCycleDeletedData{
			TreatmentCycleID: cycle.ID,
			PatientID:        cycle.PatientID,
			DeletedAt:        time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventTreatmentCycleDeleted, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", messaging.EventTreatmentCycleDeleted, err)
	}
}
