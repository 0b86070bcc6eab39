package main

import (
	"context"
	"log"
	"time"

	"github.com/PhysioCare-Clinic/clinic-service/internal/db"
	"github.com/PhysioCare-Clinic/clinic-service/internal/messaging"
	"github.com/PhysioCare-Clinic/clinic-service/internal/treatmentcycle"
)

func main() {
	log.Println("Treatment Cycle Cleanup Job - Starting")

	// Connect to database
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Events are optional for a maintenance job; skip when the broker is down.
	var publisher messaging.PublisherInterface
	rabbitPublisher, err := messaging.NewPublisher()
	if err != nil {
		log.Printf("Warning: RabbitMQ unavailable, deletion events will not be published: %v", err)
	} else {
		publisher = rabbitPublisher
		defer rabbitPublisher.Close()
	}

	cycleRepo := treatmentcycle.NewRepository(database)
	cycleService := treatmentcycle.NewService(cycleRepo, publisher, nil)

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	deletedCount, err := cycleService.OrphanSweep(ctx)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}

	log.Printf("✓ Cleanup completed successfully: %d orphaned treatment cycles deleted", deletedCount)
	log.Println("Cleanup Job - Finished")
}
