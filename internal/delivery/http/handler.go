package http

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monitorlens/backend/internal/domain"
)

// Handler serves the read-only catalog API.
type Handler struct {
	reader domain.CatalogReader
}

// NewHandler creates a new HTTP handler
func NewHandler(reader domain.CatalogReader) *Handler {
	return &Handler{reader: reader}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "monitorlens-backend",
		"version": "1.0.0",
	})
}

// ListProducts returns products filtered by the query parameters.
// Supported filters: brand, min_size, max_size, min_refresh_rate, panel_type,
// resolution, in_stock, plus skip/limit pagination.
func (h *Handler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Brand:          c.Query("brand"),
		MinSize:        queryFloat(c, "min_size"),
		MaxSize:        queryFloat(c, "max_size"),
		MinRefreshRate: queryFloat(c, "min_refresh_rate"),
		PanelType:      c.Query("panel_type"),
		Resolution:     c.Query("resolution"),
		InStock:        c.Query("in_stock") == "true",
		Skip:           queryInt(c, "skip", 0),
		Limit:          queryInt(c, "limit", 50),
	}

	products, err := h.reader.FilterProducts(c.Request.Context(), filter)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": emptyIfNil(products),
		"count":    len(products),
	})
}

// productPrice is one store's offer for a product as served by the API.
type productPrice struct {
	StoreID     string  `json:"storeId"`
	StoreName   string  `json:"storeName"`
	Price       float64 `json:"price"`
	StockStatus string  `json:"stockStatus,omitempty"`
	URL         string  `json:"url"`
	LastUpdated string  `json:"lastUpdated"`
}

// GetProduct returns one product with its per-store prices.
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.reader.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.serverError(c, err)
		return
	}

	prices, err := h.productPrices(c, product.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"prices":  prices,
	})
}

// CompareProduct returns a product's offers sorted by price, with the best
// in-stock offer and the spread between the cheapest and priciest store.
func (h *Handler) CompareProduct(c *gin.Context) {
	product, err := h.reader.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.serverError(c, err)
		return
	}

	prices, err := h.productPrices(c, product.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}

	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Price < prices[j].Price
	})

	var best *productPrice
	for i := range prices {
		if isInStock(prices[i].StockStatus) {
			best = &prices[i]
			break
		}
	}

	spread := 0.0
	if len(prices) > 1 {
		spread = prices[len(prices)-1].Price - prices[0].Price
	}

	c.JSON(http.StatusOK, gin.H{
		"product":     product,
		"prices":      prices,
		"bestOffer":   best,
		"priceSpread": spread,
	})
}

// MultiStoreProducts returns products carried by at least min_stores stores.
func (h *Handler) MultiStoreProducts(c *gin.Context) {
	minStores := queryInt(c, "min_stores", 2)
	if minStores < 2 {
		minStores = 2
	}

	products, err := h.reader.MultiStoreProducts(c.Request.Context(),
		minStores, queryInt(c, "skip", 0), queryInt(c, "limit", 50))
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": emptyIfNil(products),
		"count":    len(products),
	})
}

// SearchProducts matches a free-text query against name, brand and model.
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	products, err := h.reader.SearchProducts(c.Request.Context(), query, queryInt(c, "limit", 50))
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": emptyIfNil(products),
		"count":    len(products),
		"query":    query,
	})
}

// ListBrands returns the distinct brands in the catalog.
func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.reader.ListBrands(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	if brands == nil {
		brands = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands, "count": len(brands)})
}

// ListStores returns the known retail sources.
func (h *Handler) ListStores(c *gin.Context) {
	stores, err := h.reader.ListStores(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	if stores == nil {
		stores = []domain.Store{}
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores, "count": len(stores)})
}

// Stats returns catalog-wide aggregates.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.reader.Stats(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// productPrices joins a product's linked listings with their store names.
func (h *Handler) productPrices(c *gin.Context, productID string) ([]productPrice, error) {
	links, err := h.reader.ListPriceLinks(c.Request.Context(), productID)
	if err != nil {
		return nil, err
	}

	prices := make([]productPrice, 0, len(links))
	for _, link := range links {
		storeName := ""
		if store, err := h.reader.GetStore(c.Request.Context(), link.StoreID); err == nil {
			storeName = store.Name
		}
		prices = append(prices, productPrice{
			StoreID:     link.StoreID,
			StoreName:   storeName,
			Price:       link.Price,
			StockStatus: link.StockStatus,
			URL:         link.URL,
			LastUpdated: link.LastUpdated.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return prices, nil
}

func (h *Handler) serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func queryFloat(c *gin.Context, name string) float64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func isInStock(status string) bool {
	return strings.Contains(strings.ToLower(status), "in stock")
}

func emptyIfNil(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
