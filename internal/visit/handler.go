package visit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/PhysioCare-Clinic/clinic-service/internal/auth"
	"github.com/PhysioCare-Clinic/clinic-service/internal/pagination"
	"github.com/PhysioCare-Clinic/clinic-service/internal/patient"
	"github.com/PhysioCare-Clinic/clinic-service/internal/treatmentcycle"
	"github.com/gorilla/mux"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type VisitIDResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	VisitID int    `json:"visitId"`
}

type TimeCheckResponse struct {
	Success bool `json:"success"`
	Planned bool `json:"planned"`
}

func (h *Handler) GetFinishedVisitInfo(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	id, ok := idFromRequest(w, r, "id")
	if !ok {
		return
	}

	info, err := h.service.GetFinishedVisitInfo(r.Context(), clinician, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (h *Handler) GetIncomingVisits(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	patientID, ok := idFromRequest(w, r, "patientId")
	if !ok {
		return
	}

	visits, err := h.service.GetIncomingVisits(r.Context(), clinician, patientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if visits == nil {
		visits = []VisitPlanInfo{}
	}

	respondJSON(w, http.StatusOK, visits)
}

func (h *Handler) GetIncomingVisit(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	id, ok := idFromRequest(w, r, "id")
	if !ok {
		return
	}

	info, err := h.service.GetIncomingVisit(r.Context(), clinician, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (h *Handler) GetCalendarEvents(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}

	events, err := h.service.GetCalendarEvents(r.Context(), clinician)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if events == nil {
		events = []CalendarEvent{}
	}

	respondJSON(w, http.StatusOK, events)
}

func (h *Handler) GetCalendarEvent(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	id, ok := idFromRequest(w, r, "id")
	if !ok {
		return
	}

	event, err := h.service.GetCalendarEvent(r.Context(), clinician, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

func (h *Handler) IsVisitPlannedInGivenTime(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}

	var req TimeCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	planned, err := h.service.IsVisitPlannedInGivenTime(r.Context(), clinician, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, TimeCheckResponse{Success: true, Planned: planned})
}

func (h *Handler) GetFinishedVisitsByTreatmentCycle(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	cycleID, ok := idFromRequest(w, r, "id")
	if !ok {
		return
	}

	params := pagination.ParseParams(r)
	response, err := h.service.GetFinishedVisitsByTreatmentCycle(r.Context(), clinician, cycleID, params)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

func (h *Handler) PlanFirstVisit(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	patientID, ok := idFromRequest(w, r, "patientId")
	if !ok {
		return
	}

	var plan VisitPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	visitID, err := h.service.PlanFirstVisit(r.Context(), clinician, plan, patientID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, VisitIDResponse{
		Success: true,
		Message: "Visit planned successfully",
		VisitID: visitID,
	})
}

func (h *Handler) PlanNextVisit(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}

	var plan VisitPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	visitID, err := h.service.PlanNextVisit(r.Context(), clinician, plan)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, VisitIDResponse{
		Success: true,
		Message: "Visit planned successfully",
		VisitID: visitID,
	})
}

func (h *Handler) PlanVisitForNewPatient(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}

	var req PlanVisitForNewPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	visitID, err := h.service.PlanVisitForNewPatient(r.Context(), clinician, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, VisitIDResponse{
		Success: true,
		Message: "Patient registered and visit planned successfully",
		VisitID: visitID,
	})
}

func (h *Handler) UpdateVisitPlan(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	id, ok := idFromRequest(w, r, "id")
	if !ok {
		return
	}

	var plan VisitPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	visitID, err := h.service.UpdateVisitPlan(r.Context(), clinician, id, plan)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, VisitIDResponse{
		Success: true,
		Message: "Visit plan updated successfully",
		VisitID: visitID,
	})
}

func (h *Handler) CancelVisit(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}
	id, ok := idFromRequest(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.CancelVisit(r.Context(), clinician, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Visit cancelled successfully",
	})
}

func (h *Handler) FinishVisit(w http.ResponseWriter, r *http.Request) {
	clinician, ok := h.clinician(w, r)
	if !ok {
		return
	}

	var req FinishVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	visitID, err := h.service.FinishVisit(r.Context(), clinician, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, VisitIDResponse{
		Success: true,
		Message: "Visit finished successfully",
		VisitID: visitID,
	})
}

func (h *Handler) clinician(w http.ResponseWriter, r *http.Request) (string, bool) {
	clinician, err := auth.CurrentClinician(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return "", false
	}
	return clinician, true
}

func idFromRequest(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars[name])
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "Identifier must be an integer")
		return 0, false
	}
	return id, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrVisitNotFound),
		errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, treatmentcycle.ErrTreatmentCycleNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrAlreadyFinished),
		errors.Is(err, ErrCancelFinishedVisit):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ErrTreatmentCycleUnresolved),
		errors.Is(err, ErrMissingPatientID),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidTime),
		errors.Is(err, patient.ErrMissingFirstName),
		errors.Is(err, patient.ErrMissingLastName):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
