package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/monitorlens/backend/internal/domain"
)

// Repository is a thread-safe in-memory catalog used by tests and the
// database.type=memory mode. Insertion order is preserved so batch runs stay
// deterministic.
type Repository struct {
	mutex        sync.RWMutex
	products     map[string]domain.Product
	productOrder []string
	stores       map[string]domain.Store
	storeOrder   []string
	links        map[string]domain.PriceLink
	linkOrder    []string
}

// NewRepository creates an empty in-memory catalog repository
func NewRepository() *Repository {
	return &Repository{
		products: make(map[string]domain.Product),
		stores:   make(map[string]domain.Store),
		links:    make(map[string]domain.PriceLink),
	}
}

// FindProduct looks up a canonical product by exact (brand, model).
func (r *Repository) FindProduct(ctx context.Context, brand, model string) (*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, id := range r.productOrder {
		p := r.products[id]
		if p.Brand == brand && p.Model == model {
			return cloneProduct(p), nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// CreateProduct stores a new canonical product and mints its identifier.
func (r *Repository) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	product.ID = uuid.NewString()
	product.Specs = product.Specs.Clone()
	product.CreatedAt = now
	product.UpdatedAt = now

	r.products[product.ID] = product
	r.productOrder = append(r.productOrder, product.ID)
	return cloneProduct(product), nil
}

// FindStore looks up a store by display name.
func (r *Repository) FindStore(ctx context.Context, name string) (*domain.Store, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, id := range r.storeOrder {
		s := r.stores[id]
		if s.Name == name {
			store := s
			return &store, nil
		}
	}
	return nil, domain.ErrStoreNotFound
}

// CreateStore stores a new retail source.
func (r *Repository) CreateStore(ctx context.Context, name, website string) (*domain.Store, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	store := domain.Store{
		ID:        uuid.NewString(),
		Name:      name,
		Website:   website,
		CreatedAt: time.Now(),
	}
	r.stores[store.ID] = store
	r.storeOrder = append(r.storeOrder, store.ID)

	result := store
	return &result, nil
}

// ListProducts returns all products in creation order.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.Product, 0, len(r.productOrder))
	for _, id := range r.productOrder {
		out = append(out, *cloneProduct(r.products[id]))
	}
	return out, nil
}

// ListStores returns all stores in creation order.
func (r *Repository) ListStores(ctx context.Context) ([]domain.Store, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.Store, 0, len(r.storeOrder))
	for _, id := range r.storeOrder {
		out = append(out, r.stores[id])
	}
	return out, nil
}

// ListPriceLinks returns the links claimed by one product, in creation order.
func (r *Repository) ListPriceLinks(ctx context.Context, productID string) ([]domain.PriceLink, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []domain.PriceLink
	for _, id := range r.linkOrder {
		link := r.links[id]
		if link.ProductID == productID && link.Status == domain.LinkStatusLinked {
			out = append(out, link)
		}
	}
	return out, nil
}

// ListUnclaimedListings returns one store's unmatched listings.
func (r *Repository) ListUnclaimedListings(ctx context.Context, storeID string) ([]domain.PriceLink, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []domain.PriceLink
	for _, id := range r.linkOrder {
		link := r.links[id]
		if link.StoreID == storeID && link.Status == domain.LinkStatusUnmatched {
			out = append(out, link)
		}
	}
	return out, nil
}

// CreatePriceLink records a listing already claimed by a product.
func (r *Repository) CreatePriceLink(ctx context.Context, params domain.CreateLinkParams) (*domain.PriceLink, error) {
	if params.ProductID == "" {
		return nil, domain.ErrInvalidRequest
	}
	return r.createLink(params, domain.LinkStatusLinked), nil
}

// CreateUnclaimedListing records a listing with no product association yet.
func (r *Repository) CreateUnclaimedListing(ctx context.Context, params domain.CreateLinkParams) (*domain.PriceLink, error) {
	params.ProductID = ""
	return r.createLink(params, domain.LinkStatusUnmatched), nil
}

func (r *Repository) createLink(params domain.CreateLinkParams, status domain.LinkStatus) *domain.PriceLink {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	link := domain.PriceLink{
		ID:              uuid.NewString(),
		ProductID:       params.ProductID,
		StoreID:         params.StoreID,
		Price:           params.Price,
		StockStatus:     params.StockStatus,
		URL:             params.URL,
		OriginalTitle:   params.OriginalTitle,
		OriginalPayload: params.OriginalPayload,
		Status:          status,
		LastUpdated:     time.Now(),
	}
	r.links[link.ID] = link
	r.linkOrder = append(r.linkOrder, link.ID)

	result := link
	return &result
}

// LinkListing claims an unclaimed listing for a product.
func (r *Repository) LinkListing(ctx context.Context, listingID, productID string) (*domain.PriceLink, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	link, exists := r.links[listingID]
	if !exists {
		return nil, domain.ErrListingNotFound
	}
	if link.Status == domain.LinkStatusLinked {
		return nil, domain.ErrListingClaimed
	}
	if _, exists := r.products[productID]; !exists {
		return nil, domain.ErrProductNotFound
	}

	link.ProductID = productID
	link.Status = domain.LinkStatusLinked
	link.LastUpdated = time.Now()
	r.links[listingID] = link

	result := link
	return &result, nil
}

// GetProduct returns one product by identifier.
func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

// GetStore returns one store by identifier.
func (r *Repository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	store, exists := r.stores[id]
	if !exists {
		return nil, domain.ErrStoreNotFound
	}
	result := store
	return &result, nil
}

// FilterProducts applies the read-facade filter in creation order.
func (r *Repository) FilterProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var matched []domain.Product
	for _, id := range r.productOrder {
		p := r.products[id]
		if !productMatchesFilter(p, filter) {
			continue
		}
		if filter.InStock && !r.hasInStockLink(p.ID) {
			continue
		}
		matched = append(matched, *cloneProduct(p))
	}

	return paginate(matched, filter.Skip, filter.Limit), nil
}

func productMatchesFilter(p domain.Product, filter domain.ProductFilter) bool {
	if filter.Brand != "" && !strings.Contains(strings.ToLower(p.Brand), strings.ToLower(filter.Brand)) {
		return false
	}
	if filter.MinSize > 0 && p.Size < filter.MinSize {
		return false
	}
	if filter.MaxSize > 0 && (p.Size == 0 || p.Size > filter.MaxSize) {
		return false
	}
	if filter.MinRefreshRate > 0 && p.RefreshRate < filter.MinRefreshRate {
		return false
	}
	if filter.PanelType != "" && !strings.EqualFold(p.PanelType, filter.PanelType) {
		return false
	}
	if filter.Resolution != "" && p.Resolution != filter.Resolution {
		return false
	}
	return true
}

// hasInStockLink reports whether any linked listing is in stock. Stock status
// is free text, so the check is a case-insensitive substring test.
func (r *Repository) hasInStockLink(productID string) bool {
	for _, id := range r.linkOrder {
		link := r.links[id]
		if link.ProductID == productID && link.Status == domain.LinkStatusLinked &&
			strings.Contains(strings.ToLower(link.StockStatus), "in stock") {
			return true
		}
	}
	return false
}

// SearchProducts matches the query against name, brand and model.
func (r *Repository) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	q := strings.ToLower(query)
	var out []domain.Product
	for _, id := range r.productOrder {
		p := r.products[id]
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Model), q) {
			out = append(out, *cloneProduct(p))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// MultiStoreProducts returns products linked in at least minStores stores,
// most widely available first.
func (r *Repository) MultiStoreProducts(ctx context.Context, minStores, skip, limit int) ([]domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	counts := make(map[string]map[string]bool)
	for _, id := range r.linkOrder {
		link := r.links[id]
		if link.Status != domain.LinkStatusLinked {
			continue
		}
		if counts[link.ProductID] == nil {
			counts[link.ProductID] = make(map[string]bool)
		}
		counts[link.ProductID][link.StoreID] = true
	}

	var matched []domain.Product
	for _, id := range r.productOrder {
		if len(counts[id]) >= minStores {
			matched = append(matched, *cloneProduct(r.products[id]))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return len(counts[matched[i].ID]) > len(counts[matched[j].ID])
	})

	return paginate(matched, skip, limit), nil
}

// ListBrands returns the distinct brands in first-seen order.
func (r *Repository) ListBrands(ctx context.Context) ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[string]bool)
	var brands []string
	for _, id := range r.productOrder {
		brand := r.products[id].Brand
		if !seen[brand] {
			seen[brand] = true
			brands = append(brands, brand)
		}
	}
	return brands, nil
}

// Stats aggregates the catalog for reporting.
func (r *Repository) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := &domain.CatalogStats{
		TotalProducts:   len(r.productOrder),
		ProductsByBrand: make(map[string]int),
		LinksByStore:    make(map[string]int),
	}

	for _, id := range r.productOrder {
		stats.ProductsByBrand[r.products[id].Brand]++
	}

	storesPerProduct := make(map[string]map[string]bool)
	total := 0.0
	priced := 0
	for _, id := range r.linkOrder {
		link := r.links[id]
		if link.Status != domain.LinkStatusLinked {
			continue
		}
		if store, exists := r.stores[link.StoreID]; exists {
			stats.LinksByStore[store.Name]++
		}
		if storesPerProduct[link.ProductID] == nil {
			storesPerProduct[link.ProductID] = make(map[string]bool)
		}
		storesPerProduct[link.ProductID][link.StoreID] = true

		if stats.MinPrice == 0 || link.Price < stats.MinPrice {
			stats.MinPrice = link.Price
		}
		if link.Price > stats.MaxPrice {
			stats.MaxPrice = link.Price
		}
		total += link.Price
		priced++
	}
	if priced > 0 {
		stats.AvgPrice = total / float64(priced)
	}

	for _, stores := range storesPerProduct {
		if len(stores) > 1 {
			stats.MultiStoreProducts++
		}
	}

	return stats, nil
}

func cloneProduct(p domain.Product) *domain.Product {
	clone := p
	clone.Specs = p.Specs.Clone()
	return &clone
}

func paginate(products []domain.Product, skip, limit int) []domain.Product {
	if skip >= len(products) {
		return nil
	}
	products = products[skip:]
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products
}
