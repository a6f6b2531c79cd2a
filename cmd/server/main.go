package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/monitorlens/backend/config"
	httpDelivery "github.com/monitorlens/backend/internal/delivery/http"
	"github.com/monitorlens/backend/internal/domain"
	"github.com/monitorlens/backend/internal/infrastructure/memory"
	"github.com/monitorlens/backend/internal/infrastructure/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting MonitorLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Database Type: %s", cfg.Database.Type)

	reader, cleanup, err := openCatalog(cfg)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer cleanup()

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(reader)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openCatalog selects the configured storage backend. The memory backend
// starts empty and is only useful for local experiments; postgres is the
// real deployment target and gets its schema applied on startup.
func openCatalog(cfg *config.Config) (domain.CatalogReader, func(), error) {
	if cfg.Database.Type == "memory" {
		return memory.NewRepository(), func() {}, nil
	}

	repo, err := postgres.Open(context.Background(), cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureSchema(context.Background()); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return repo, func() { repo.Close() }, nil
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
