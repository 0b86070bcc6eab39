package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/auth"
	"github.com/PhysioCare-Clinic/clinic-service/internal/db"
	clinichttp "github.com/PhysioCare-Clinic/clinic-service/internal/http"
	"github.com/PhysioCare-Clinic/clinic-service/internal/messaging"
	"github.com/PhysioCare-Clinic/clinic-service/internal/telemetry"
)

func main() {
	log.Println("clinic-service starting")

	ctx := context.Background()

	// Initialize OpenTelemetry (tracing + metrics)
	telemetryCfg := telemetry.LoadConfig()
	provider, err := telemetry.InitProvider(ctx, telemetryCfg)
	if err != nil {
		log.Printf("Warning: telemetry initialization failed, continuing without: %v", err)
	}
	if provider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: telemetry shutdown failed: %v", err)
			}
		}()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: metrics initialization failed, continuing without: %v", err)
		metrics = nil
	}

	// Connect to database
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(ctx, database); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// RabbitMQ is optional; events are skipped when the broker is unreachable.
	var publisher messaging.PublisherInterface
	rabbitPublisher, err := messaging.NewPublisher()
	if err != nil {
		log.Printf("Warning: RabbitMQ unavailable, events will not be published: %v", err)
	} else {
		publisher = rabbitPublisher
		defer rabbitPublisher.Close()
	}

	// Auth: JWKS-backed token verification plus role permissions
	authCfg := auth.LoadConfig()
	jwks, err := auth.NewJWKS(authCfg.JWKSURL, 15*time.Minute)
	if err != nil {
		log.Fatalf("Failed to initialize JWKS: %v", err)
	}
	defer jwks.Close()
	verifier := auth.NewVerifier(authCfg, jwks)

	permissionsFile := os.Getenv("PERMISSIONS_FILE")
	if permissionsFile == "" {
		permissionsFile = "permissions.yml"
	}
	perms, err := auth.LoadPermissions(permissionsFile)
	if err != nil {
		log.Fatalf("Failed to load permissions: %v", err)
	}
	log.Printf("✓ Permissions loaded for %d roles", len(perms))

	txRunner := db.NewTxRunner(database)
	router := clinichttp.SetupRouter(database, txRunner, verifier, perms, publisher, metrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      clinichttp.CORSMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ clinic-service listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown failed: %v", err)
	}
	log.Println("✓ clinic-service stopped")
}
