package domain

import (
	"context"
	"encoding/json"
)

// CreateLinkParams carries everything needed to record one store listing.
// ProductID is empty for unclaimed rows written by the scraper collaborator.
type CreateLinkParams struct {
	ProductID       string
	StoreID         string
	Price           float64
	StockStatus     string
	URL             string
	OriginalTitle   string
	OriginalPayload json.RawMessage
}

// CatalogRepository is the persistence contract consumed by the ingest and
// matching engines. The repository is the single source of truth; the engine
// never caches catalog state across runs.
type CatalogRepository interface {
	FindProduct(ctx context.Context, brand, model string) (*Product, error)
	CreateProduct(ctx context.Context, product Product) (*Product, error)
	FindStore(ctx context.Context, name string) (*Store, error)
	CreateStore(ctx context.Context, name, website string) (*Store, error)

	ListProducts(ctx context.Context) ([]Product, error)
	ListStores(ctx context.Context) ([]Store, error)
	ListPriceLinks(ctx context.Context, productID string) ([]PriceLink, error)
	ListUnclaimedListings(ctx context.Context, storeID string) ([]PriceLink, error)

	// CreatePriceLink records a listing already claimed by a product.
	CreatePriceLink(ctx context.Context, params CreateLinkParams) (*PriceLink, error)
	// CreateUnclaimedListing records a listing with no product association yet.
	CreateUnclaimedListing(ctx context.Context, params CreateLinkParams) (*PriceLink, error)
	// LinkListing claims an unclaimed listing for a product: assigns the
	// product, flips the status to linked and bumps LastUpdated.
	LinkListing(ctx context.Context, listingID, productID string) (*PriceLink, error)
}

// ProductFilter narrows FilterProducts results. Zero values mean "no filter".
type ProductFilter struct {
	Brand          string
	MinSize        float64
	MaxSize        float64
	MinRefreshRate float64
	PanelType      string
	Resolution     string
	InStock        bool
	Skip           int
	Limit          int
}

// CatalogStats is the aggregate view served by the stats endpoint and printed
// after a batch run.
type CatalogStats struct {
	TotalProducts      int            `json:"totalProducts"`
	ProductsByBrand    map[string]int `json:"productsByBrand"`
	LinksByStore       map[string]int `json:"linksByStore"`
	MultiStoreProducts int            `json:"multiStoreProducts"`
	MinPrice           float64        `json:"minPrice"`
	AvgPrice           float64        `json:"avgPrice"`
	MaxPrice           float64        `json:"maxPrice"`
}

// CatalogReader is the read-side contract behind the serving facade.
type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context) ([]Store, error)
	ListPriceLinks(ctx context.Context, productID string) ([]PriceLink, error)
	FilterProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	MultiStoreProducts(ctx context.Context, minStores, skip, limit int) ([]Product, error)
	ListBrands(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*CatalogStats, error)
}
