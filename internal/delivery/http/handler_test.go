package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monitorlens/backend/config"
	"github.com/monitorlens/backend/internal/domain"
	"github.com/monitorlens/backend/internal/infrastructure/memory"
)

func testRouter(t *testing.T) (*gin.Engine, *memory.Repository, *domain.Product) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	repo := memory.NewRepository()
	dell, err := repo.CreateProduct(ctx, domain.Product{
		Name: "Dell P2425H", Brand: "Dell", Model: "P2425H", Category: "Monitors",
		Size: 24, Resolution: "1920x1080", RefreshRate: 100, PanelType: "IPS",
	})
	require.NoError(t, err)
	_, err = repo.CreateProduct(ctx, domain.Product{
		Name: "LG 27GP850-B", Brand: "LG", Model: "27GP850-B", Category: "Monitors",
		Size: 27, Resolution: "2560x1440", RefreshRate: 165, PanelType: "NANO IPS",
	})
	require.NoError(t, err)

	anhoch, err := repo.CreateStore(ctx, "anhoch", "https://anhoch.example")
	require.NoError(t, err)
	setec, err := repo.CreateStore(ctx, "setec", "https://setec.example")
	require.NoError(t, err)

	for _, params := range []domain.CreateLinkParams{
		{ProductID: dell.ID, StoreID: anhoch.ID, Price: 9500, StockStatus: "Out of stock", URL: "https://anhoch.example/1"},
		{ProductID: dell.ID, StoreID: setec.ID, Price: 9800, StockStatus: "In Stock", URL: "https://setec.example/1"},
	} {
		_, err := repo.CreatePriceLink(ctx, params)
		require.NoError(t, err)
	}

	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "development", AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{PerIP: 100000},
	}
	return SetupRouter(cfg, NewHandler(repo)), repo, dell
}

func doRequest(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	body := make(map[string]json.RawMessage)
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func countOf(t *testing.T, body map[string]json.RawMessage) int {
	t.Helper()
	var count int
	require.NoError(t, json.Unmarshal(body["count"], &count))
	return count
}

func TestHealthCheck(t *testing.T) {
	router, _, _ := testRouter(t)
	w, _ := doRequest(t, router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestListProducts(t *testing.T) {
	router, _, _ := testRouter(t)

	t.Run("no filter returns everything", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/products")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, countOf(t, body))
	})

	t.Run("brand filter", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/products?brand=dell")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, countOf(t, body))
	})

	t.Run("numeric filters", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/products?min_size=25&min_refresh_rate=144")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, countOf(t, body))
	})

	t.Run("in stock filter", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/products?in_stock=true")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, countOf(t, body))
	})

	t.Run("bad numeric values fall back to defaults", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/products?min_size=abc&limit=zzz")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, countOf(t, body))
	})
}

func TestGetProduct(t *testing.T) {
	router, _, dell := testRouter(t)

	t.Run("found with prices", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/products/"+dell.ID)
		require.Equal(t, http.StatusOK, w.Code)

		var prices []productPrice
		require.NoError(t, json.Unmarshal(body["prices"], &prices))
		require.Len(t, prices, 2)
		assert.Equal(t, "anhoch", prices[0].StoreName)
	})

	t.Run("unknown id", func(t *testing.T) {
		w, _ := doRequest(t, router, "/api/v1/products/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCompareProduct(t *testing.T) {
	router, _, dell := testRouter(t)

	w, body := doRequest(t, router, "/api/v1/products/"+dell.ID+"/compare")
	require.Equal(t, http.StatusOK, w.Code)

	var prices []productPrice
	require.NoError(t, json.Unmarshal(body["prices"], &prices))
	require.Len(t, prices, 2)
	assert.Equal(t, 9500.0, prices[0].Price, "prices sorted ascending")

	// the cheapest offer is out of stock, so the best offer is the in-stock one
	var best productPrice
	require.NoError(t, json.Unmarshal(body["bestOffer"], &best))
	assert.Equal(t, "setec", best.StoreName)
	assert.Equal(t, 9800.0, best.Price)

	var spread float64
	require.NoError(t, json.Unmarshal(body["priceSpread"], &spread))
	assert.Equal(t, 300.0, spread)
}

func TestSearchProducts(t *testing.T) {
	router, _, _ := testRouter(t)

	t.Run("missing query is rejected", func(t *testing.T) {
		w, _ := doRequest(t, router, "/api/v1/products/search")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("query matches model", func(t *testing.T) {
		w, body := doRequest(t, router, "/api/v1/products/search?q=p2425")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, countOf(t, body))
	})
}

func TestMultiStoreProducts(t *testing.T) {
	router, _, _ := testRouter(t)

	w, body := doRequest(t, router, "/api/v1/products/multi-store")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, countOf(t, body), "only the dell is sold in two stores")
}

func TestBrandsStoresStats(t *testing.T) {
	router, _, _ := testRouter(t)

	w, body := doRequest(t, router, "/api/v1/brands")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, countOf(t, body))

	w, body = doRequest(t, router, "/api/v1/stores")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, countOf(t, body))

	w, _ = doRequest(t, router, "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "totalProducts")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(60)) // 1 rps, burst of 7
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	var limited bool
	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected the limiter to kick in within the burst window")
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://app.example"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin gets headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://app.example")
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origins get nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://app.example")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
