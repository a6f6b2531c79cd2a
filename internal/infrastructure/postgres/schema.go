package postgres

import (
	"context"
	"fmt"
)

// schema is applied on startup; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		brand         TEXT NOT NULL,
		model         TEXT NOT NULL,
		category      TEXT NOT NULL,
		specs         JSONB,
		size          DOUBLE PRECISION,
		resolution    TEXT,
		refresh_rate  DOUBLE PRECISION,
		panel_type    TEXT,
		image_url     TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_brand_model ON products (brand, model)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		website    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS price_links (
		id               TEXT PRIMARY KEY,
		product_id       TEXT REFERENCES products (id),
		store_id         TEXT NOT NULL REFERENCES stores (id),
		price            DOUBLE PRECISION NOT NULL,
		stock_status     TEXT,
		url              TEXT NOT NULL,
		original_title   TEXT,
		original_payload JSONB,
		status           TEXT NOT NULL DEFAULT 'unmatched',
		last_updated     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_links_product ON price_links (product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_price_links_store_status ON price_links (store_id, status)`,
}

// EnsureSchema creates the catalog tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
