package main

import (
	"context"
	"log"

	"docai-platform-be/internal/bootstrap"
	"docai-platform-be/internal/config"
	"docai-platform-be/internal/server"
	"docai-platform-be/internal/tracer"
	"docai-platform-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Diff Consumer Service...")
		if err := container.DiffConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Diff Consumer Error: %v", err)
		}
	}()
	if err := container.EventConsumerService.Start(); err != nil {
		log.Printf("Background Event Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
