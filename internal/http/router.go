package http

import (
	"database/sql"
	"net/http"

	"github.com/PhysioCare-Clinic/clinic-service/internal/auth"
	"github.com/PhysioCare-Clinic/clinic-service/internal/db"
	"github.com/PhysioCare-Clinic/clinic-service/internal/messaging"
	"github.com/PhysioCare-Clinic/clinic-service/internal/patient"
	"github.com/PhysioCare-Clinic/clinic-service/internal/photo"
	"github.com/PhysioCare-Clinic/clinic-service/internal/telemetry"
	"github.com/PhysioCare-Clinic/clinic-service/internal/treatmentcycle"
	"github.com/PhysioCare-Clinic/clinic-service/internal/visit"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// SetupRouter initializes all routes for the application
func SetupRouter(database *sql.DB, txRunner db.TxRunner, verifier *auth.Verifier, perms auth.Permissions, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *mux.Router {
	// Initialize patient components
	patientRepo := patient.NewRepository(database)
	patientService := patient.NewService(patientRepo, publisher, metrics)
	patientHandler := patient.NewHandler(patientService)

	// Initialize treatment cycle components
	cycleRepo := treatmentcycle.NewRepository(database)
	cycleService := treatmentcycle.NewService(cycleRepo, publisher, metrics)

	// Initialize photo components
	photoRepo := photo.NewRepository(database)

	// Initialize visit components
	visitRepo := visit.NewRepository(database)
	visitService := visit.NewService(visitRepo, cycleService, patientService, photoRepo, txRunner, publisher, metrics)
	visitHandler := visit.NewHandler(visitService)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("clinic-service"))

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"clinic-service"}`))
	}).Methods("GET")

	// A nil *telemetry.Metrics must stay a nil interface inside the
	// middleware, so the recorders are only assigned when metrics exist.
	var authMetrics auth.MetricsRecorder
	var permMetrics auth.PermissionMetricsRecorder
	if metrics != nil {
		authMetrics = metrics
		permMetrics = metrics
	}

	// Every clinic route requires a verified token plus a role permission.
	protect := func(permission string, handler http.HandlerFunc) http.Handler {
		return auth.MiddlewareWithMetrics(verifier, authMetrics)(
			auth.RequirePermissionWithMetrics(permission, perms, permMetrics)(handler),
		)
	}

	// Patient routes
	r.Handle("/clinic/patients", protect("patient:create", patientHandler.CreatePatient)).Methods("POST")
	r.Handle("/clinic/patients", protect("patient:view", patientHandler.ListPatients)).Methods("GET")
	r.Handle("/clinic/patients/{id}", protect("patient:view", patientHandler.GetPatient)).Methods("GET")
	r.Handle("/clinic/patients/{id}", protect("patient:update", patientHandler.UpdatePatient)).Methods("PUT")
	r.Handle("/clinic/patients/{id}", protect("patient:delete", patientHandler.DeletePatient)).Methods("DELETE")

	// Visit query routes
	r.Handle("/clinic/visits/{id}/finished", protect("visit:view", visitHandler.GetFinishedVisitInfo)).Methods("GET")
	r.Handle("/clinic/visits/{id}/incoming", protect("visit:view", visitHandler.GetIncomingVisit)).Methods("GET")
	r.Handle("/clinic/patients/{patientId}/incoming-visits", protect("visit:view", visitHandler.GetIncomingVisits)).Methods("GET")
	r.Handle("/clinic/calendar", protect("calendar:view", visitHandler.GetCalendarEvents)).Methods("GET")
	r.Handle("/clinic/calendar/{id}", protect("calendar:view", visitHandler.GetCalendarEvent)).Methods("GET")
	r.Handle("/clinic/visits/time-check", protect("visit:view", visitHandler.IsVisitPlannedInGivenTime)).Methods("POST")
	r.Handle("/clinic/treatment-cycles/{id}/finished-visits", protect("visit:view", visitHandler.GetFinishedVisitsByTreatmentCycle)).Methods("GET")

	// Visit planning routes
	r.Handle("/clinic/patients/{patientId}/first-visit", protect("visit:plan", visitHandler.PlanFirstVisit)).Methods("POST")
	r.Handle("/clinic/visits", protect("visit:plan", visitHandler.PlanNextVisit)).Methods("POST")
	r.Handle("/clinic/visits/new-patient", protect("visit:plan", visitHandler.PlanVisitForNewPatient)).Methods("POST")
	r.Handle("/clinic/visits/{id}", protect("visit:update", visitHandler.UpdateVisitPlan)).Methods("PUT")
	r.Handle("/clinic/visits/{id}", protect("visit:cancel", visitHandler.CancelVisit)).Methods("DELETE")

	// Visit finishing route
	r.Handle("/clinic/visits/finish", protect("visit:finish", visitHandler.FinishVisit)).Methods("POST")

	return r
}
