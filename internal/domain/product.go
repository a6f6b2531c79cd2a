package domain

import (
	"encoding/json"
	"time"
)

// Product is the canonical catalog entity for one physical monitor,
// identified by its normalized (brand, model) pair. The pair is assigned at
// creation and never reassigned afterwards.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Category    string    `json:"category"`
	Specs       Specs     `json:"specs,omitempty"`
	Size        float64   `json:"size,omitempty"`        // display size in inches, 0 = unknown
	Resolution  string    `json:"resolution,omitempty"`  // e.g. "1920x1080"
	RefreshRate float64   `json:"refreshRate,omitempty"` // e.g. 60, 144, 165
	PanelType   string    `json:"panelType,omitempty"`   // e.g. "IPS", "VA", "TN"
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Store is one retail source. Identity is the display name; a store is
// created once and immutable afterwards.
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// LinkStatus tracks whether a listing has been claimed by a canonical
// product. Unmatched rows are the matching engine's candidate pool.
type LinkStatus string

const (
	LinkStatusUnmatched LinkStatus = "unmatched"
	LinkStatusLinked    LinkStatus = "linked"
)

// PriceLink is one store's observation of an item: the raw listing plus, once
// claimed, its association to a canonical product. ProductID is empty exactly
// while Status is LinkStatusUnmatched.
type PriceLink struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId,omitempty"`
	StoreID         string          `json:"storeId"`
	Price           float64         `json:"price"`
	StockStatus     string          `json:"stockStatus,omitempty"`
	URL             string          `json:"url"`
	OriginalTitle   string          `json:"originalTitle,omitempty"`
	OriginalPayload json.RawMessage `json:"originalPayload,omitempty"` // opaque, retained for re-matching and audit
	Status          LinkStatus      `json:"status"`
	LastUpdated     time.Time       `json:"lastUpdated,omitempty"`
}

// RawListing is one scraped record as produced by the scraper job.
type RawListing struct {
	Title    string `json:"name"`
	Price    string `json:"price"`
	Stock    string `json:"stock,omitempty"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Snapshot is one scrape pass over a single store.
type Snapshot struct {
	Products []RawListing `json:"products"`
}

// Source identifies the store a snapshot belongs to.
type Source struct {
	Name    string `json:"name" mapstructure:"name"`
	Website string `json:"website" mapstructure:"website"`
	File    string `json:"file,omitempty" mapstructure:"file"`
}

// ExtractedAttributes is the transient output of the attribute extractor.
// Unset fields keep their zero value; the extractor never guesses.
type ExtractedAttributes struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand,omitempty"`
	Model       string  `json:"model,omitempty"`
	Size        float64 `json:"size,omitempty"`
	Resolution  string  `json:"resolution,omitempty"`
	RefreshRate float64 `json:"refreshRate,omitempty"`
	PanelType   string  `json:"panelType,omitempty"`
	Specs       Specs   `json:"specs,omitempty"`
}

// MatchRecord is the audit log entry for one accepted cross-store match.
type MatchRecord struct {
	ProductID    string  `json:"productId"`
	ProductBrand string  `json:"productBrand"`
	ProductModel string  `json:"productModel"`
	StoreID      string  `json:"storeId"`
	StoreName    string  `json:"storeName"`
	ListingID    string  `json:"listingId"`
	Score        float64 `json:"score"`
}

// BatchReport summarizes one ingest run for a single source.
type BatchReport struct {
	Source    string `json:"source"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
}
