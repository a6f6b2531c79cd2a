package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/monitorlens/backend/internal/domain"
)

const productColumns = `id, name, brand, model, category, specs, size,
	resolution, refresh_rate, panel_type, image_url, created_at, updated_at`

const linkColumns = `id, product_id, store_id, price, stock_status, url,
	original_title, original_payload, status, last_updated`

// Repository is the Postgres-backed catalog. All reads hit the database
// directly; nothing is cached across calls.
type Repository struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", domain.ErrRepositoryFailure, err)
	}
	return &Repository{db: db}, nil
}

// NewRepository wraps an existing database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

// FindProduct looks up a canonical product by exact (brand, model).
func (r *Repository) FindProduct(ctx context.Context, brand, model string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE brand = $1 AND model = $2
		ORDER BY created_at
		LIMIT 1
	`, brand, model)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find product: %v", domain.ErrRepositoryFailure, err)
	}
	return product, nil
}

// CreateProduct stores a new canonical product and mints its identifier.
func (r *Repository) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	specs, err := json.Marshal(product.Specs)
	if err != nil {
		return nil, fmt.Errorf("encode specs: %w", err)
	}

	now := time.Now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, brand, model, category, specs, size,
			resolution, refresh_rate, panel_type, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), NULLIF($8, ''),
			NULLIF($9, 0), NULLIF($10, ''), NULLIF($11, ''), $12, $13)
	`, product.ID, product.Name, product.Brand, product.Model, product.Category,
		specs, product.Size, product.Resolution, product.RefreshRate,
		product.PanelType, product.ImageURL, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: create product: %v", domain.ErrRepositoryFailure, err)
	}

	return &product, nil
}

// FindStore looks up a store by display name.
func (r *Repository) FindStore(ctx context.Context, name string) (*domain.Store, error) {
	var store domain.Store
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, website, created_at FROM stores WHERE name = $1
	`, name).Scan(&store.ID, &store.Name, &store.Website, &store.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find store: %v", domain.ErrRepositoryFailure, err)
	}
	return &store, nil
}

// CreateStore stores a new retail source.
func (r *Repository) CreateStore(ctx context.Context, name, website string) (*domain.Store, error) {
	store := domain.Store{
		ID:        uuid.NewString(),
		Name:      name,
		Website:   website,
		CreatedAt: time.Now(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, website, created_at) VALUES ($1, $2, $3, $4)
	`, store.ID, store.Name, store.Website, store.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: create store: %v", domain.ErrRepositoryFailure, err)
	}
	return &store, nil
}

// ListProducts returns all products in creation order.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+` FROM products ORDER BY created_at, id
	`)
}

// ListStores returns all stores in creation order.
func (r *Repository) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, website, created_at FROM stores ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list stores: %v", domain.ErrRepositoryFailure, err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(&store.ID, &store.Name, &store.Website, &store.CreatedAt); err != nil {
			log.Printf("[POSTGRES] error scanning store row: %v", err)
			continue
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

// ListPriceLinks returns the links claimed by one product, oldest first.
func (r *Repository) ListPriceLinks(ctx context.Context, productID string) ([]domain.PriceLink, error) {
	return r.queryLinks(ctx, `
		SELECT `+linkColumns+`
		FROM price_links
		WHERE product_id = $1 AND status = 'linked'
		ORDER BY last_updated, id
	`, productID)
}

// ListUnclaimedListings returns one store's unmatched listings, oldest first.
func (r *Repository) ListUnclaimedListings(ctx context.Context, storeID string) ([]domain.PriceLink, error) {
	return r.queryLinks(ctx, `
		SELECT `+linkColumns+`
		FROM price_links
		WHERE store_id = $1 AND status = 'unmatched'
		ORDER BY last_updated, id
	`, storeID)
}

// CreatePriceLink records a listing already claimed by a product.
func (r *Repository) CreatePriceLink(ctx context.Context, params domain.CreateLinkParams) (*domain.PriceLink, error) {
	if params.ProductID == "" {
		return nil, domain.ErrInvalidRequest
	}
	return r.insertLink(ctx, params, domain.LinkStatusLinked)
}

// CreateUnclaimedListing records a listing with no product association yet.
func (r *Repository) CreateUnclaimedListing(ctx context.Context, params domain.CreateLinkParams) (*domain.PriceLink, error) {
	params.ProductID = ""
	return r.insertLink(ctx, params, domain.LinkStatusUnmatched)
}

func (r *Repository) insertLink(ctx context.Context, params domain.CreateLinkParams, status domain.LinkStatus) (*domain.PriceLink, error) {
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

	payload := link.OriginalPayload
	if len(payload) == 0 {
		payload = nil
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO price_links (id, product_id, store_id, price, stock_status,
			url, original_title, original_payload, status, last_updated)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10)
	`, link.ID, link.ProductID, link.StoreID, link.Price, link.StockStatus,
		link.URL, link.OriginalTitle, []byte(payload), link.Status, link.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("%w: create price link: %v", domain.ErrRepositoryFailure, err)
	}
	return &link, nil
}

// LinkListing claims an unclaimed listing for a product inside one
// transaction, so a concurrent claim of the same row cannot double-link it.
func (r *Repository) LinkListing(ctx context.Context, listingID, productID string) (*domain.PriceLink, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin claim: %v", domain.ErrRepositoryFailure, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE price_links
		SET product_id = $2, status = 'linked', last_updated = now()
		WHERE id = $1 AND status = 'unmatched'
	`, listingID, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: claim listing: %v", domain.ErrRepositoryFailure, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: claim listing: %v", domain.ErrRepositoryFailure, err)
	}
	if affected == 0 {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM price_links WHERE id = $1`, listingID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("%w: claim listing: %v", domain.ErrRepositoryFailure, err)
		}
		return nil, domain.ErrListingClaimed
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM price_links WHERE id = $1
	`, listingID)
	link, err := scanLink(row)
	if err != nil {
		return nil, fmt.Errorf("%w: reread claimed listing: %v", domain.ErrRepositoryFailure, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit claim: %v", domain.ErrRepositoryFailure, err)
	}
	return link, nil
}

// GetProduct returns one product by identifier.
func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", domain.ErrRepositoryFailure, err)
	}
	return product, nil
}

// GetStore returns one store by identifier.
func (r *Repository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	var store domain.Store
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, website, created_at FROM stores WHERE id = $1
	`, id).Scan(&store.ID, &store.Name, &store.Website, &store.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get store: %v", domain.ErrRepositoryFailure, err)
	}
	return &store, nil
}

// FilterProducts applies the read-facade filter.
func (r *Repository) FilterProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var conditions []string
	var args []interface{}

	add := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.Brand != "" {
		add(`brand ILIKE '%%' || $%d || '%%'`, filter.Brand)
	}
	if filter.MinSize > 0 {
		add(`size >= $%d`, filter.MinSize)
	}
	if filter.MaxSize > 0 {
		add(`size <= $%d`, filter.MaxSize)
	}
	if filter.MinRefreshRate > 0 {
		add(`refresh_rate >= $%d`, filter.MinRefreshRate)
	}
	if filter.PanelType != "" {
		add(`panel_type ILIKE $%d`, filter.PanelType)
	}
	if filter.Resolution != "" {
		add(`resolution = $%d`, filter.Resolution)
	}
	if filter.InStock {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM price_links pl
			WHERE pl.product_id = products.id
			AND pl.status = 'linked'
			AND pl.stock_status ILIKE '%in stock%'
		)`)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	return r.queryProducts(ctx, query, args...)
}

// SearchProducts matches the query against name, brand and model.
func (r *Repository) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		   OR brand ILIKE '%' || $1 || '%'
		   OR model ILIKE '%' || $1 || '%'
		ORDER BY created_at, id
		LIMIT $2
	`, query, limit)
}

// MultiStoreProducts returns products linked in at least minStores stores,
// most widely available first.
func (r *Repository) MultiStoreProducts(ctx context.Context, minStores, skip, limit int) ([]domain.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		JOIN (
			SELECT product_id, COUNT(DISTINCT store_id) AS store_count
			FROM price_links
			WHERE status = 'linked'
			GROUP BY product_id
			HAVING COUNT(DISTINCT store_id) >= $1
		) counts ON counts.product_id = products.id
		ORDER BY counts.store_count DESC, products.created_at
		LIMIT $2 OFFSET $3
	`, minStores, limit, skip)
}

// ListBrands returns the distinct brands.
func (r *Repository) ListBrands(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT brand FROM products ORDER BY brand`)
	if err != nil {
		return nil, fmt.Errorf("%w: list brands: %v", domain.ErrRepositoryFailure, err)
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var brand string
		if err := rows.Scan(&brand); err != nil {
			log.Printf("[POSTGRES] error scanning brand row: %v", err)
			continue
		}
		brands = append(brands, brand)
	}
	return brands, rows.Err()
}

// Stats aggregates the catalog for reporting.
func (r *Repository) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	stats := &domain.CatalogStats{
		ProductsByBrand: make(map[string]int),
		LinksByStore:    make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`).Scan(&stats.TotalProducts); err != nil {
		return nil, fmt.Errorf("%w: count products: %v", domain.ErrRepositoryFailure, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT brand, COUNT(*) FROM products GROUP BY brand ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: brand counts: %v", domain.ErrRepositoryFailure, err)
	}
	for rows.Next() {
		var brand string
		var count int
		if err := rows.Scan(&brand, &count); err != nil {
			continue
		}
		stats.ProductsByBrand[brand] = count
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `
		SELECT s.name, COUNT(pl.id)
		FROM stores s
		JOIN price_links pl ON pl.store_id = s.id AND pl.status = 'linked'
		GROUP BY s.name
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: store counts: %v", domain.ErrRepositoryFailure, err)
	}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			continue
		}
		stats.LinksByStore[name] = count
	}
	rows.Close()

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT product_id
			FROM price_links
			WHERE status = 'linked'
			GROUP BY product_id
			HAVING COUNT(DISTINCT store_id) > 1
		) multi
	`).Scan(&stats.MultiStoreProducts)
	if err != nil {
		return nil, fmt.Errorf("%w: multi-store count: %v", domain.ErrRepositoryFailure, err)
	}

	var minPrice, avgPrice, maxPrice sql.NullFloat64
	err = r.db.QueryRowContext(ctx, `
		SELECT MIN(price), AVG(price), MAX(price)
		FROM price_links WHERE status = 'linked'
	`).Scan(&minPrice, &avgPrice, &maxPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: price stats: %v", domain.ErrRepositoryFailure, err)
	}
	stats.MinPrice = minPrice.Float64
	stats.AvgPrice = avgPrice.Float64
	stats.MaxPrice = maxPrice.Float64

	return stats, nil
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query products: %v", domain.ErrRepositoryFailure, err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			log.Printf("[POSTGRES] error scanning product row: %v", err)
			continue
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func (r *Repository) queryLinks(ctx context.Context, query string, args ...interface{}) ([]domain.PriceLink, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query price links: %v", domain.ErrRepositoryFailure, err)
	}
	defer rows.Close()

	var links []domain.PriceLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			log.Printf("[POSTGRES] error scanning price link row: %v", err)
			continue
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product     domain.Product
		specs       []byte
		size        sql.NullFloat64
		resolution  sql.NullString
		refreshRate sql.NullFloat64
		panelType   sql.NullString
		imageURL    sql.NullString
	)

	err := row.Scan(&product.ID, &product.Name, &product.Brand, &product.Model,
		&product.Category, &specs, &size, &resolution, &refreshRate,
		&panelType, &imageURL, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &product.Specs); err != nil {
			return nil, fmt.Errorf("decode specs: %w", err)
		}
	}
	product.Size = size.Float64
	product.Resolution = resolution.String
	product.RefreshRate = refreshRate.Float64
	product.PanelType = panelType.String
	product.ImageURL = imageURL.String

	return &product, nil
}

func scanLink(row rowScanner) (*domain.PriceLink, error) {
	var (
		link      domain.PriceLink
		productID sql.NullString
		stock     sql.NullString
		title     sql.NullString
		payload   []byte
	)

	err := row.Scan(&link.ID, &productID, &link.StoreID, &link.Price, &stock,
		&link.URL, &title, &payload, &link.Status, &link.LastUpdated)
	if err != nil {
		return nil, err
	}

	link.ProductID = productID.String
	link.StockStatus = stock.String
	link.OriginalTitle = title.String
	link.OriginalPayload = payload

	return &link, nil
}
