package patient

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/messaging"
	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
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

func (s *Service) CreatePatient(ctx context.Context, clinician string, req CreatePatientRequest) (*PatientResponse, error) {
	if req.FirstName == "" {
		return nil, ErrMissingFirstName
	}
	if req.LastName == "" {
		return nil, ErrMissingLastName
	}

	created, err := s.repo.Create(ctx, clinician, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.recordOperation(ctx, "create")
	s.publishCreated(ctx, clinician, created)

	return created, nil
}

// CreatePatientTx creates a patient inside the caller's transaction.
// No event is published here; the orchestrating flow publishes after commit.
func (s *Service) CreatePatientTx(ctx context.Context, tx *sql.Tx, clinician string, req CreatePatientRequest) (int, error) {
	if req.FirstName == "" {
		return 0, ErrMissingFirstName
	}
	if req.LastName == "" {
		return 0, ErrMissingLastName
	}

	id, err := s.repo.CreateTx(ctx, tx, clinician, req)
	if err != nil {
		return 0, fmt.Errorf("failed to create patient: %w", err)
	}

	return id, nil
}

func (s *Service) GetPatient(ctx context.Context, clinician string, id int) (*PatientResponse, error) {
	found, err := s.repo.Get(ctx, clinician, id)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ValidateOwnership confirms the patient exists and belongs to the clinician.
// Absence and foreign ownership are indistinguishable to the caller.
func (s *Service) ValidateOwnership(ctx context.Context, clinician string, id int) error {
	exists, err := s.repo.Exists(ctx, clinician, id)
	if err != nil {
		return fmt.Errorf("failed to validate patient ownership: %w", err)
	}
	if !exists {
		return ErrPatientNotFound
	}
	return nil
}

func (s *Service) ListPatientsWithPagination(ctx context.Context, clinician string, params pagination.Params, search string) (*PaginatedPatientListResponse, error) {
	params.Validate()

	patients, total, err := s.repo.ListWithPagination(ctx, clinician, params.Limit, params.CalculateOffset(), search)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return &PaginatedPatientListResponse{
		Success:    true,
		Patients:   patients,
		Pagination: params.CalculateMeta(total),
	}, nil
}

func (s *Service) UpdatePatient(ctx context.Context, clinician string, id int, req UpdatePatientRequest) (*PatientResponse, error) {
	updated, err := s.repo.Update(ctx, clinician, id, req)
	if err != nil {
		return nil, err
	}

	s.recordOperation(ctx, "update")
	s.publish(ctx, messaging.EventPatientUpdated, messaging.PatientUpdatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientUpdated),
		Data: messaging.PatientUpdatedData{
			PatientID:         updated.ID,
			ClinicianUsername: clinician,
			UpdatedAt:         time.Now().UTC(),
		},
	})

	return updated, nil
}

func (s *Service) DeletePatient(ctx context.Context, clinician string, id int) error {
	if err := s.repo.Delete(ctx, clinician, id); err != nil {
		return err
	}

	s.recordOperation(ctx, "delete")
	s.publish(ctx, messaging.EventPatientDeleted, messaging.PatientDeletedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientDeleted),
		Data: messaging.PatientDeletedData{
			PatientID:         id,
			ClinicianUsername: clinician,
			DeletedAt:         time.Now().UTC(),
		},
	})

	return nil
}

func (s *Service) publishCreated(ctx context.Context, clinician string, created *PatientResponse) {
	s.publish(ctx, messaging.EventPatientCreated, messaging.PatientCreatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientCreated),
		Data: messaging.PatientCreatedData{
			PatientID:         created.ID,
			ClinicianUsername: clinician,
			FirstName:         created.FirstName,
			LastName:          created.LastName,
			Email:             created.Email,
			PhoneNumber:       created.PhoneNumber,
			CreatedAt:         created.CreatedAt,
		},
	})
}

// publish sends an event; failures are logged and never fail the request.
func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

func (s *Service) recordOperation(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.RecordPatientOperation(ctx, operation)
	}
}
