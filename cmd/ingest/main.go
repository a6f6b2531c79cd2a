package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/monitorlens/backend/config"
	"github.com/monitorlens/backend/internal/domain"
	"github.com/monitorlens/backend/internal/infrastructure/memory"
	"github.com/monitorlens/backend/internal/infrastructure/postgres"
	"github.com/monitorlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(cfg.Ingest.Sources) == 0 {
		log.Fatalf("No ingest sources configured (set ingest.sources in config.yaml)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, cleanup, err := openCatalog(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer cleanup()

	ingest := usecase.NewIngestService(repo, usecase.IngestConfig{
		Category:           cfg.Ingest.Category,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})
	matcher := usecase.NewMatchingService(repo, usecase.MatchConfig{
		MinScore:                 cfg.Matching.MinScore,
		ModelSimilarityThreshold: cfg.Matching.ModelSimilarityThreshold,
		SpecsSimilarityThreshold: cfg.Matching.SpecsSimilarityThreshold,
		EnableDebugLogging:       cfg.Matching.EnableDebugLogging,
	})

	// Phase 1: ingest every source in configured order. Matching only starts
	// once all upserts have finished, so the canonical set is complete.
	var reports []domain.BatchReport
	for _, source := range cfg.Ingest.Sources {
		snapshot, err := loadSnapshot(source.File)
		if err != nil {
			log.Fatalf("Failed to load snapshot for %s: %v", source.Name, err)
		}

		report, err := ingest.ProcessSnapshot(ctx, source, *snapshot)
		if err != nil {
			log.Fatalf("Ingest failed for %s: %v", source.Name, err)
		}
		reports = append(reports, *report)
	}

	// Phase 2: one cross-store matching pass over the whole catalog.
	records, err := matcher.Run(ctx)
	if err != nil {
		log.Fatalf("Matching run failed: %v", err)
	}

	printSummary(ctx, repo, reports, records)
}

// openCatalog selects the configured storage backend.
func openCatalog(ctx context.Context, cfg *config.Config) (catalog, func(), error) {
	if cfg.Database.Type == "memory" {
		return memory.NewRepository(), func() {}, nil
	}

	repo, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return repo, func() { repo.Close() }, nil
}

// catalog is the union of the write and read contracts; both backends
// implement it.
type catalog interface {
	domain.CatalogRepository
	domain.CatalogReader
}

// loadSnapshot reads one store's scrape output from disk.
func loadSnapshot(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot file %s: %w", path, err)
	}
	return &snapshot, nil
}

func printSummary(ctx context.Context, repo catalog, reports []domain.BatchReport, records []domain.MatchRecord) {
	for _, report := range reports {
		log.Printf("Source %s: processed=%d created=%d skipped=%d",
			report.Source, report.Processed, report.Created, report.Skipped)
	}

	log.Printf("Cross-store matches accepted: %d", len(records))
	for _, record := range records {
		log.Printf("  %s %s <- %s (score %.2f)",
			record.ProductBrand, record.ProductModel, record.StoreName, record.Score)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		log.Printf("Failed to compute catalog stats: %v", err)
		return
	}
	log.Printf("Catalog: %d products, %d sold in multiple stores",
		stats.TotalProducts, stats.MultiStoreProducts)
	if stats.MaxPrice > 0 {
		log.Printf("Prices: min=%.2f avg=%.2f max=%.2f",
			stats.MinPrice, stats.AvgPrice, stats.MaxPrice)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
