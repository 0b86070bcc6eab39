package visit

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/db"
	"github.com/PhysioCare-Clinic/clinic-service/internal/messaging"
	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
	"github.com/PhysioCare-Clinic/clinic-service/internal/telemetry"
	"github.com/PhysioCare-Clinic/clinic-service/internal/treatmentcycle"
)

type Service struct {
	repo      RepositoryInterface
	cycles    TreatmentCycleService
	patients  PatientService
	photos    PhotoRepository
	txRunner  db.TxRunner
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

func NewService(
	repo RepositoryInterface,
	cycles TreatmentCycleService,
	patients PatientService,
	photos PhotoRepository,
	txRunner db.TxRunner,
	publisher messaging.PublisherInterface,
	metrics *telemetry.Metrics,
) *Service {
	return &Service{
		repo:      repo,
		cycles:    cycles,
		patients:  patients,
		photos:    photos,
		txRunner:  txRunner,
		publisher: publisher,
		metrics:   metrics,
	}
}

func (s *Service) GetFinishedVisitInfo(ctx context.Context, clinician string, visitID int) (*FinishedVisitInfo, error) {
	return s.repo.FindFinishedVisitInfo(ctx, clinician, visitID)
}

func (s *Service) GetIncomingVisits(ctx context.Context, clinician string, patientID int) ([]VisitPlanInfo, error) {
	if err := s.patients.ValidateOwnership(ctx, clinician, patientID); err != nil {
		return nil, err
	}
	return s.repo.FindIncomingVisitsByPatient(ctx, clinician, patientID)
}

func (s *Service) GetIncomingVisit(ctx context.Context, clinician string, visitID int) (*VisitPlanInfo, error) {
	return s.repo.FindIncomingVisit(ctx, clinician, visitID)
}

func (s *Service) GetCalendarEvents(ctx context.Context, clinician string) ([]CalendarEvent, error) {
	return s.repo.FindCalendarEvents(ctx, clinician)
}

func (s *Service) GetCalendarEvent(ctx context.Context, clinician string, visitID int) (*CalendarEvent, error) {
	return s.repo.FindCalendarEvent(ctx, clinician, visitID)
}

// IsVisitPlannedInGivenTime reports whether some other visit of the
// clinician overlaps the candidate slot. The candidate's own id is
// excluded so edits don't conflict with themselves.
func (s *Service) IsVisitPlannedInGivenTime(ctx context.Context, clinician string, req TimeCheckRequest) (bool, error) {
	date, err := normalizeDate(&req.Date)
	if err != nil {
		return false, err
	}
	startTime, err := normalizeTime(&req.StartTime)
	if err != nil {
		return false, err
	}
	endTime, err := normalizeTime(&req.EndTime)
	if err != nil {
		return false, err
	}
	if date == nil {
		return false, ErrInvalidDate
	}
	if startTime == nil || endTime == nil {
		return false, ErrInvalidTime
	}

	return s.repo.ExistsOverlapping(ctx, clinician, req.ID, *date, *startTime, *endTime)
}

func (s *Service) GetFinishedVisitsByTreatmentCycle(ctx context.Context, clinician string, cycleID int, params pagination.Params) (*PaginatedFinishedVisitsResponse, error) {
	params.Validate()

	visits, total, err := s.repo.FindFinishedByTreatmentCycle(ctx, clinician, cycleID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, err
	}

	return &PaginatedFinishedVisitsResponse{
		Success:    true,
		Visits:     visits,
		Pagination: params.CalculateMeta(total),
	}, nil
}

// PlanFirstVisit opens a brand-new treatment cycle for the patient and
// plans the first visit under it, atomically.
func (s *Service) PlanFirstVisit(ctx context.Context, clinician string, plan VisitPlan, patientID int) (int, error) {
	if err := s.patients.ValidateOwnership(ctx, clinician, patientID); err != nil {
		return 0, err
	}

	v, err := visitFromPlan(clinician, plan)
	if err != nil {
		return 0, err
	}

	var cycleID int
	err = s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		cycleID, err = s.cycles.CreateForPatientTx(ctx, tx, clinician, patientID, nil, "")
		if err != nil {
			return err
		}
		v.TreatmentCycleID = &cycleID
		_, err = s.repo.CreateTx(ctx, tx, v)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.recordOperation(ctx, "plan")
	s.publishCycleCreated(ctx, clinician, cycleID, patientID, nil)
	s.publishPlanned(ctx, clinician, v, patientID)

	return v.ID, nil
}

// PlanNextVisit attaches a visit to an existing cycle. An unresolvable
// cycle id still saves the visit, just without a cycle reference. Known
// oddity kept for the existing clients; the warning log is the only trace.
func (s *Service) PlanNextVisit(ctx context.Context, clinician string, plan VisitPlan) (int, error) {
	v, err := visitFromPlan(clinician, plan)
	if err != nil {
		return 0, err
	}

	requested := wireID(plan.TreatmentCycleID)

	err = s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		if requested != -1 {
			cycle, err := s.cycles.GetTx(ctx, tx, clinician, requested)
			if err == nil {
				v.TreatmentCycleID = &cycle.ID
			} else if errors.Is(err, treatmentcycle.ErrTreatmentCycleNotFound) {
				log.Printf("Warning: treatment cycle %d not found, saving visit without a cycle", requested)
			} else {
				return err
			}
		}
		_, err := s.repo.CreateTx(ctx, tx, v)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.recordOperation(ctx, "plan")
	s.publishPlanned(ctx, clinician, v, 0)

	return v.ID, nil
}

// PlanVisitForNewPatient registers the patient, opens their first cycle
// and plans the visit in one transaction.
func (s *Service) PlanVisitForNewPatient(ctx context.Context, clinician string, req PlanVisitForNewPatientRequest) (int, error) {
	v := &Visit{ClinicianUsername: clinician}
	var err error
	if v.Date, err = normalizeDate(req.Visit.Date); err != nil {
		return 0, err
	}
	if v.StartTime, err = normalizeTime(req.Visit.StartTime); err != nil {
		return 0, err
	}
	if v.EndTime, err = normalizeTime(req.Visit.EndTime); err != nil {
		return 0, err
	}

	var patientID, cycleID int
	err = s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		patientID, err = s.patients.CreatePatientTx(ctx, tx, clinician, req.Patient)
		if err != nil {
			return err
		}
		cycleID, err = s.cycles.CreateForPatientTx(ctx, tx, clinician, patientID, nil, "")
		if err != nil {
			return err
		}
		v.TreatmentCycleID = &cycleID
		_, err = s.repo.CreateTx(ctx, tx, v)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.recordOperation(ctx, "plan")
	s.publish(ctx, messaging.EventPatientCreated, messaging.PatientCreatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientCreated),
		Data: messaging.PatientCreatedData{
			PatientID:         patientID,
			ClinicianUsername: clinician,
			FirstName:         req.Patient.FirstName,
			LastName:          req.Patient.LastName,
			Email:             req.Patient.Email,
			PhoneNumber:       req.Patient.PhoneNumber,
			CreatedAt:         time.Now().UTC(),
		},
	})
	s.publishCycleCreated(ctx, clinician, cycleID, patientID, nil)
	s.publishPlanned(ctx, clinician, v, patientID)

	return v.ID, nil
}

// UpdateVisitPlan applies plan changes onto an existing visit. The wire
// sentinel treatmentCycleId == -1 requests a brand-new cycle for the
// same patient; the previous cycle is orphan-checked afterwards.
func (s *Service) UpdateVisitPlan(ctx context.Context, clinician string, visitID int, newPlan VisitPlan) (int, error) {
	date, err := normalizeDate(newPlan.Date)
	if err != nil {
		return 0, err
	}
	startTime, err := normalizeTime(newPlan.StartTime)
	if err != nil {
		return 0, err
	}
	endTime, err := normalizeTime(newPlan.EndTime)
	if err != nil {
		return 0, err
	}

	err = s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		v, err := s.repo.GetTx(ctx, tx, clinician, visitID)
		if err != nil {
			return err
		}

		previousCycleID := v.TreatmentCycleID

		if newPlan.Date != nil {
			v.Date = date
		}
		if newPlan.StartTime != nil {
			v.StartTime = startTime
		}
		if newPlan.EndTime != nil {
			v.EndTime = endTime
		}
		if newPlan.Description != nil {
			v.Description = newPlan.Description
		}

		if wireID(newPlan.TreatmentCycleID) == -1 && newPlan.TreatmentCycleID != nil {
			if previousCycleID == nil {
				return ErrTreatmentCycleUnresolved
			}
			previous, err := s.cycles.GetTx(ctx, tx, clinician, *previousCycleID)
			if err != nil {
				return err
			}
			newCycleID, err := s.cycles.CreateForPatientTx(ctx, tx, clinician, previous.PatientID, nil, "")
			if err != nil {
				return err
			}
			v.TreatmentCycleID = &newCycleID
		}

		if err := s.repo.SaveTx(ctx, tx, v); err != nil {
			return err
		}

		// The previous cycle is orphan-checked even when unchanged.
		if previousCycleID != nil {
			if _, err := s.cycles.DeleteIfNoVisitsTx(ctx, tx, *previousCycleID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.recordOperation(ctx, "update")
	s.publish(ctx, messaging.EventVisitUpdated, messaging.VisitUpdatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventVisitUpdated),
		Data: messaging.VisitUpdatedData{
			VisitID:           visitID,
			ClinicianUsername: clinician,
			Date:              stringValue(date),
			StartTime:         stringValue(startTime),
			EndTime:           stringValue(endTime),
			UpdatedAt:         time.Now().UTC(),
		},
	})

	return visitID, nil
}

// CancelVisit deletes a planned visit together with its photos and
// orphan-checks its cycle. Finished visits cannot be cancelled.
func (s *Service) CancelVisit(ctx context.Context, clinician string, visitID int) error {
	var cancelledCycle *treatmentcycle.TreatmentCycle
	var cycleDeleted bool

	err := s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		v, err := s.repo.GetTx(ctx, tx, clinician, visitID)
		if err != nil {
			return err
		}
		if v.Finished {
			return ErrCancelFinishedVisit
		}

		if v.TreatmentCycleID != nil {
			cycle, err := s.cycles.GetTx(ctx, tx, clinician, *v.TreatmentCycleID)
			if err != nil && !errors.Is(err, treatmentcycle.ErrTreatmentCycleNotFound) {
				return err
			}
			cancelledCycle = cycle
		}

		if _, err := s.photos.DeleteByVisitTx(ctx, tx, visitID); err != nil {
			return err
		}
		if err := s.repo.DeleteTx(ctx, tx, clinician, visitID); err != nil {
			return err
		}

		if v.TreatmentCycleID != nil {
			cycleDeleted, err = s.cycles.DeleteIfNoVisitsTx(ctx, tx, *v.TreatmentCycleID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recordOperation(ctx, "cancel")
	s.publish(ctx, messaging.EventVisitCancelled, messaging.VisitCancelledEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventVisitCancelled),
		Data: messaging.VisitCancelledData{
			VisitID:           visitID,
			ClinicianUsername: clinician,
			CancelledAt:       time.Now().UTC(),
		},
	})
	if cycleDeleted && cancelledCycle != nil {
		s.publish(ctx, messaging.EventTreatmentCycleDeleted, messaging.TreatmentCycleDeletedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventTreatmentCycleDeleted),
			Data: messaging.TreatmentCycleDeletedData{
				TreatmentCycleID: cancelledCycle.ID,
				PatientID:        cancelledCycle.PatientID,
				DeletedAt:        time.Now().UTC(),
			},
		})
	}

	return nil
}

// FinishVisit records the completion of a visit. A visit id of -1 (or
// absent) finishes a visit that was never planned; a treatmentCycleId of
// -1 opens a new cycle for the payload's patient. Returns the id of the
// clinician's most recently created visit, which the existing clients
// rely on. That id can diverge from the visit just finished; kept as-is.
func (s *Service) FinishVisit(ctx context.Context, clinician string, req FinishVisitRequest) (int, error) {
	date, err := normalizeDate(req.Visit.Date)
	if err != nil {
		return 0, err
	}
	startTime, err := normalizeTime(req.Visit.StartTime)
	if err != nil {
		return 0, err
	}
	endTime, err := normalizeTime(req.Visit.EndTime)
	if err != nil {
		return 0, err
	}
	injuryDate, err := normalizeDate(req.TreatmentCycle.InjuryDate)
	if err != nil {
		return 0, err
	}

	visitID := wireID(req.Visit.ID)
	cycleID := wireID(req.Visit.TreatmentCycleID)

	var returnedID int
	var finished *Visit
	var resolvedCycle *treatmentcycle.TreatmentCycle

	err = s.txRunner.RunInTx(ctx, func(tx *sql.Tx) error {
		var base *Visit
		var previousCycleID *int
		hadPlan := visitID != -1

		if !hadPlan {
			base = &Visit{ClinicianUsername: clinician}
		} else {
			loaded, err := s.repo.GetTx(ctx, tx, clinician, visitID)
			if err != nil {
				return err
			}
			if loaded.Finished {
				return ErrAlreadyFinished
			}
			base = loaded
			previousCycleID = loaded.TreatmentCycleID
		}

		if req.Visit.Description != nil {
			base.Description = req.Visit.Description
		}
		if req.Visit.Diagnosis != nil {
			base.Diagnosis = req.Visit.Diagnosis
		}
		if req.Visit.Treatment != nil {
			base.Treatment = req.Visit.Treatment
		}
		if req.Visit.Recommendations != nil {
			base.Recommendations = req.Visit.Recommendations
		}

		var cycle *treatmentcycle.TreatmentCycle
		if cycleID == -1 {
			if req.Visit.PatientID == nil {
				return ErrMissingPatientID
			}
			if err := s.patients.ValidateOwnership(ctx, clinician, *req.Visit.PatientID); err != nil {
				return err
			}
			newCycleID, err := s.cycles.CreateForPatientTx(ctx, tx, clinician, *req.Visit.PatientID, nil, "")
			if err != nil {
				return err
			}
			// The previous cycle is checked before the visit is re-pointed,
			// while its row still references that cycle. It therefore never
			// counts as orphaned here; kept for behavioral compatibility.
			if hadPlan && previousCycleID != nil {
				if _, err := s.cycles.DeleteIfNoVisitsTx(ctx, tx, *previousCycleID); err != nil {
					return err
				}
			}
			cycle, err = s.cycles.GetTx(ctx, tx, clinician, newCycleID)
			if err != nil {
				return err
			}
		} else {
			loaded, err := s.cycles.GetTx(ctx, tx, clinician, cycleID)
			if errors.Is(err, treatmentcycle.ErrTreatmentCycleNotFound) {
				return ErrTreatmentCycleUnresolved
			}
			if err != nil {
				return err
			}
			cycle = loaded
		}

		if req.TreatmentCycle.InjuryDescription != nil {
			cycle.InjuryDescription = *req.TreatmentCycle.InjuryDescription
		}
		// Always overwritten from the payload, even to null when absent.
		cycle.InjuryDate = injuryDate
		if err := s.cycles.SaveTx(ctx, tx, cycle); err != nil {
			return err
		}

		// Date and times are taken from the payload wholesale as well.
		base.Date = date
		base.StartTime = startTime
		base.EndTime = endTime
		base.TreatmentCycleID = &cycle.ID
		base.Finished = true

		if hadPlan {
			if err := s.repo.SaveTx(ctx, tx, base); err != nil {
				return err
			}
		} else {
			if _, err := s.repo.CreateTx(ctx, tx, base); err != nil {
				return err
			}
		}

		finished = base
		resolvedCycle = cycle

		returnedID, err = s.repo.LastVisitIDTx(ctx, tx, clinician)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.recordOperation(ctx, "finish")
	s.publish(ctx, messaging.EventVisitFinished, messaging.VisitFinishedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventVisitFinished),
		Data: messaging.VisitFinishedData{
			VisitID:           finished.ID,
			TreatmentCycleID:  resolvedCycle.ID,
			PatientID:         resolvedCycle.PatientID,
			ClinicianUsername: clinician,
			FinishedAt:        time.Now().UTC(),
		},
	})

	return returnedID, nil
}

func visitFromPlan(clinician string, plan VisitPlan) (*Visit, error) {
	v := &Visit{ClinicianUsername: clinician}
	var err error
	if v.Date, err = normalizeDate(plan.Date); err != nil {
		return nil, err
	}
	if v.StartTime, err = normalizeTime(plan.StartTime); err != nil {
		return nil, err
	}
	if v.EndTime, err = normalizeTime(plan.EndTime); err != nil {
		return nil, err
	}
	v.Description = plan.Description
	return v, nil
}

func (s *Service) publishPlanned(ctx context.Context, clinician string, v *Visit, patientID int) {
	data := messaging.VisitPlannedData{
		VisitID:           v.ID,
		PatientID:         patientID,
		ClinicianUsername: clinician,
		Date:              stringValue(v.Date),
		StartTime:         stringValue(v.StartTime),
		EndTime:           stringValue(v.EndTime),
		PlannedAt:         time.Now().UTC(),
	}
	if v.TreatmentCycleID != nil {
		data.TreatmentCycleID = *v.TreatmentCycleID
	}
	s.publish(ctx, messaging.EventVisitPlanned, messaging.VisitPlannedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventVisitPlanned),
		Data:      data,
	})
}

func (s *Service) publishCycleCreated(ctx context.Context, clinician string, cycleID, patientID int, injuryDate *string) {
	s.publish(ctx, messaging.EventTreatmentCycleCreated, messaging.TreatmentCycleCreatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventTreatmentCycleCreated),
		Data: messaging.TreatmentCycleCreatedData{
			TreatmentCycleID:  cycleID,
			PatientID:         patientID,
			ClinicianUsername: clinician,
			InjuryDate:        stringValue(injuryDate),
			CreatedAt:         time.Now().UTC(),
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
		s.metrics.RecordVisitOperation(ctx, operation)
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
