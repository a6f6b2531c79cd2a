package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/monitorlens/backend/internal/domain"
)

// IngestConfig holds configuration for the ingest service
type IngestConfig struct {
	Category           string
	EnableDebugLogging bool
}

// IngestService turns raw scrape snapshots into canonical products and price
// links. Listings are processed in snapshot order so (brand, model)
// collisions within one run always resolve to the product created first.
type IngestService struct {
	repo               domain.CatalogRepository
	extractor          *AttributeExtractor
	category           string
	enableDebugLogging bool
}

// NewIngestService creates a new ingest service with dependencies
func NewIngestService(repo domain.CatalogRepository, config IngestConfig) *IngestService {
	category := config.Category
	if category == "" {
		category = "Monitors"
	}

	return &IngestService{
		repo:               repo,
		extractor:          NewAttributeExtractor(config.EnableDebugLogging),
		category:           category,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// ProcessSnapshot ingests one store's snapshot.
// Flow per record: validate -> extract attributes -> normalize price ->
// upsert product by (brand, model) -> create a linked price link.
// Records missing title or price are skipped and counted; a repository
// failure aborts the remaining records with a diagnostic naming the step.
// Already-created rows are not rolled back.
func (s *IngestService) ProcessSnapshot(
	ctx context.Context,
	source domain.Source,
	snapshot domain.Snapshot,
) (*domain.BatchReport, error) {
	report := &domain.BatchReport{Source: source.Name}

	store, err := s.resolveStore(ctx, source)
	if err != nil {
		return report, fmt.Errorf("resolve store %q: %w", source.Name, err)
	}

	for _, listing := range snapshot.Products {
		if listing.Title == "" || listing.Price == "" {
			report.Skipped++
			log.Printf("[INGEST] skipping record from %s: missing title or price (url=%q)",
				source.Name, listing.URL)
			continue
		}

		attrs := s.extractor.Extract(listing.Title)
		price := NormalizePrice(listing.Price)

		product, created, err := s.resolveProduct(ctx, attrs, listing)
		if err != nil {
			return report, fmt.Errorf("upsert product for %q: %w", listing.Title, err)
		}
		if created {
			report.Created++
		}

		payload, err := json.Marshal(listing)
		if err != nil {
			return report, fmt.Errorf("encode raw payload for %q: %w", listing.Title, err)
		}

		stock := listing.Stock
		if stock == "" {
			stock = "Unknown"
		}

		// Always a fresh link, even for a product this store already carries:
		// repeated scrapes accumulate price history rather than dedupe.
		_, err = s.repo.CreatePriceLink(ctx, domain.CreateLinkParams{
			ProductID:       product.ID,
			StoreID:         store.ID,
			Price:           price,
			StockStatus:     stock,
			URL:             listing.URL,
			OriginalTitle:   listing.Title,
			OriginalPayload: payload,
		})
		if err != nil {
			return report, fmt.Errorf("create price link for %q: %w", listing.Title, err)
		}

		report.Processed++
	}

	if s.enableDebugLogging {
		log.Printf("[INGEST] %s: processed=%d created=%d skipped=%d",
			source.Name, report.Processed, report.Created, report.Skipped)
	}

	return report, nil
}

// resolveStore finds the store by name or creates it on first contact.
func (s *IngestService) resolveStore(ctx context.Context, source domain.Source) (*domain.Store, error) {
	store, err := s.repo.FindStore(ctx, source.Name)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, domain.ErrStoreNotFound) {
		return nil, err
	}
	return s.repo.CreateStore(ctx, source.Name, source.Website)
}

// resolveProduct looks up an existing canonical product by exact
// (brand, model) and creates one when the lookup misses. The exact lookup
// runs only when both fields were extracted, so unresolved listings always
// become distinct "Unknown" entries instead of merging with each other.
func (s *IngestService) resolveProduct(
	ctx context.Context,
	attrs domain.ExtractedAttributes,
	listing domain.RawListing,
) (*domain.Product, bool, error) {
	if attrs.Brand != "" && attrs.Model != "" {
		product, err := s.repo.FindProduct(ctx, attrs.Brand, attrs.Model)
		if err == nil {
			return product, false, nil
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, false, err
		}
	}

	brand := attrs.Brand
	if brand == "" {
		brand = "Unknown"
	}
	model := attrs.Model
	if model == "" {
		model = "Unknown"
	}

	product, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:        attrs.Name,
		Brand:       brand,
		Model:       model,
		Category:    s.category,
		Specs:       attrs.Specs,
		Size:        attrs.Size,
		Resolution:  attrs.Resolution,
		RefreshRate: attrs.RefreshRate,
		PanelType:   attrs.PanelType,
		ImageURL:    listing.ImageURL,
	})
	if err != nil {
		return nil, false, err
	}
	return product, true, nil
}
