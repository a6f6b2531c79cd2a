package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/monitorlens/backend/internal/domain"
)

// Weighted score components. Each weight counts only when both sides carry
// the field.
const (
	weightBrand       = 0.25
	weightModel       = 0.35
	weightSize        = 0.15
	weightResolution  = 0.10
	weightRefreshRate = 0.10
	weightPanelType   = 0.05
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MinScore                 float64
	ModelSimilarityThreshold float64
	SpecsSimilarityThreshold float64
	EnableDebugLogging       bool
}

// MatchingService links unclaimed store listings to canonical products using
// deterministic weighted similarity scoring.
type MatchingService struct {
	repo                     domain.CatalogRepository
	extractor                *AttributeExtractor
	minScore                 float64
	modelSimilarityThreshold float64
	specsSimilarityThreshold float64
	enableDebugLogging       bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(repo domain.CatalogRepository, config MatchConfig) *MatchingService {
	minScore := config.MinScore
	if minScore <= 0 {
		minScore = 0.8
	}
	modelThreshold := config.ModelSimilarityThreshold
	if modelThreshold <= 0 {
		modelThreshold = 0.8
	}
	specsThreshold := config.SpecsSimilarityThreshold
	if specsThreshold <= 0 {
		specsThreshold = 0.7
	}

	return &MatchingService{
		repo:                     repo,
		extractor:                NewAttributeExtractor(config.EnableDebugLogging),
		minScore:                 minScore,
		modelSimilarityThreshold: modelThreshold,
		specsSimilarityThreshold: specsThreshold,
		enableDebugLogging:       config.EnableDebugLogging,
	}
}

// Run executes one cross-store matching pass over the whole catalog.
// For every product it scans the unclaimed listings of each store not yet
// linked, re-extracts listing attributes, and claims every listing whose
// weighted score clears the acceptance threshold. A listing is consumed at
// most once per run; each (product, store) pair accepts at most one link.
// Run must be called only after all upserts for the batch have completed.
func (s *MatchingService) Run(ctx context.Context) ([]domain.MatchRecord, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	var records []domain.MatchRecord
	claimed := make(map[string]bool) // listings consumed this run

	for i := range products {
		product := &products[i]

		links, err := s.repo.ListPriceLinks(ctx, product.ID)
		if err != nil {
			return records, fmt.Errorf("list price links for product %s: %w", product.ID, err)
		}
		linkedStores := make(map[string]bool, len(links))
		for _, link := range links {
			linkedStores[link.StoreID] = true
		}

		for _, store := range stores {
			if linkedStores[store.ID] {
				continue
			}

			record, err := s.matchStore(ctx, product, store, claimed)
			if err != nil {
				return records, err
			}
			if record != nil {
				records = append(records, *record)
			}
		}
	}

	return records, nil
}

// matchStore scans one store's unclaimed listings for a product and claims
// the first listing that passes candidacy and the acceptance threshold.
func (s *MatchingService) matchStore(
	ctx context.Context,
	product *domain.Product,
	store domain.Store,
	claimed map[string]bool,
) (*domain.MatchRecord, error) {
	listings, err := s.repo.ListUnclaimedListings(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("list unclaimed listings for store %s: %w", store.Name, err)
	}

	for _, listing := range listings {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if claimed[listing.ID] {
			continue
		}

		attrs := s.extractor.Extract(listing.OriginalTitle)
		if !s.isCandidate(product, attrs) {
			continue
		}

		score := s.MatchScore(product, attrs)
		if s.enableDebugLogging {
			log.Printf("[MATCH] product %s %s vs listing %q in %s: score %.2f",
				product.Brand, product.Model, listing.OriginalTitle, store.Name, score)
		}
		if score < s.minScore {
			continue
		}

		if _, err := s.repo.LinkListing(ctx, listing.ID, product.ID); err != nil {
			return nil, fmt.Errorf("link listing %s to product %s: %w", listing.ID, product.ID, err)
		}
		claimed[listing.ID] = true

		return &domain.MatchRecord{
			ProductID:    product.ID,
			ProductBrand: product.Brand,
			ProductModel: product.Model,
			StoreID:      store.ID,
			StoreName:    store.Name,
			ListingID:    listing.ID,
			Score:        score,
		}, nil
	}

	return nil, nil
}

// isCandidate applies candidate selection in fixed priority: (a) brand equal
// and model similarity above threshold; only when (a) fails, (b) exact size
// match and specs similarity above threshold.
func (s *MatchingService) isCandidate(product *domain.Product, attrs domain.ExtractedAttributes) bool {
	if attrs.Brand != "" && strings.EqualFold(attrs.Brand, product.Brand) &&
		attrs.Model != "" &&
		ModelSimilarity(attrs.Model, product.Model) >= s.modelSimilarityThreshold {
		return true
	}

	if attrs.Size != 0 && product.Size != 0 && attrs.Size == product.Size &&
		SpecsSimilarity(attrs.Specs, product.Specs) >= s.specsSimilarityThreshold {
		return true
	}

	return false
}

// scoreComponent is one independently-computed term of the weighted average.
type scoreComponent struct {
	applicable bool
	score      float64
	weight     float64
}

// MatchScore computes the overall weighted score between a product and an
// extracted attribute set. Every component is computed independently and the
// list is reduced once; with no applicable components the score is 0.
func (s *MatchingService) MatchScore(product *domain.Product, attrs domain.ExtractedAttributes) float64 {
	components := []scoreComponent{
		{
			applicable: product.Brand != "" && attrs.Brand != "",
			score:      exactScore(strings.EqualFold(product.Brand, attrs.Brand)),
			weight:     weightBrand,
		},
		{
			applicable: product.Model != "" && attrs.Model != "",
			score:      ModelSimilarity(product.Model, attrs.Model),
			weight:     weightModel,
		},
		{
			applicable: product.Size != 0 && attrs.Size != 0,
			score:      exactScore(product.Size == attrs.Size),
			weight:     weightSize,
		},
		{
			applicable: product.Resolution != "" && attrs.Resolution != "",
			score:      exactScore(product.Resolution == attrs.Resolution),
			weight:     weightResolution,
		},
		{
			applicable: product.RefreshRate != 0 && attrs.RefreshRate != 0,
			score:      exactScore(product.RefreshRate == attrs.RefreshRate),
			weight:     weightRefreshRate,
		},
		{
			applicable: product.PanelType != "" && attrs.PanelType != "",
			score:      exactScore(product.PanelType == attrs.PanelType),
			weight:     weightPanelType,
		},
	}

	return reduceScore(components)
}

// reduceScore folds the component list into the weighted average over the
// applicable weights only.
func reduceScore(components []scoreComponent) float64 {
	weightedSum := 0.0
	totalWeight := 0.0
	for _, c := range components {
		if !c.applicable {
			continue
		}
		weightedSum += c.score * c.weight
		totalWeight += c.weight
	}
	if totalWeight == 0 {
		return 0.0
	}
	return weightedSum / totalWeight
}

func exactScore(equal bool) float64 {
	if equal {
		return 1.0
	}
	return 0.0
}
