package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quantcloud-be/internal/bootstrap"
	"quantcloud-be/internal/config"
	"quantcloud-be/pkg/database"
)

// The worker binary runs the quantization loop and the retention reaper.
// It shares the container with the REST binary but starts no HTTP server.
func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Report Consumer...")
		if err := container.ReportConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Report Consumer Error: %v", err)
		}
	}()

	if container.EventAuditService != nil {
		if err := container.EventAuditService.Start(); err != nil {
			log.Printf("Background Event Audit Error: %v", err)
		}
	}

	go container.ReaperService.Run(ctx)

	log.Println("Worker is running. Press Ctrl+C to stop.")
	container.WorkerService.Run(ctx)
	log.Println("Worker stopped.")
}
