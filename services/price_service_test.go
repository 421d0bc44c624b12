package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"tomantrack/cache"
	"tomantrack/config"
	"tomantrack/models"
	"tomantrack/scraper"
	"tomantrack/services"
	"tomantrack/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<html><head><title>Xbox Series X</title></head><body>
	<p class="text-gray line-through">۷۰٬۰۰۰٬۰۰۰ تومان</p>
	<p class="font-bold">۶۳٬۶۰۰٬۰۰۰ تومان</p>
</body></html>`

func testSiteConfig() *config.SiteConfig {
	return &config.SiteConfig{
		AllowedDomain:     "techsiro.com",
		CurrencyWord:      "تومان",
		BoldClassMarker:   "bold",
		StruckClassMarker: "line-through",
		DiscountWords:     []string{"تخفیف", "صرفه‌جویی"},
		MinPriceAmount:    1000,
		FallbackSelectors: []string{".price", "#price", "[class*='price']", "[id*='price']"},
	}
}

func newService(t *testing.T) (*services.PriceService, *storage.ProductStore, *cache.PriceCache) {
	t.Helper()

	dir := t.TempDir()
	products := storage.NewProductStore(filepath.Join(dir, "products.json"))
	settings := storage.NewSettingsStore(filepath.Join(dir, "settings.json"))
	priceCache := cache.New()

	fetcher := scraper.NewFetcher(5*time.Second, "tomantrack-test/1.0")
	extractor := scraper.NewExtractor(testSiteConfig())

	return services.NewPriceService(fetcher, extractor, products, settings, priceCache, 2), products, priceCache
}

func TestPriceService_CheckProductSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	service, _, priceCache := newService(t)
	product := models.Product{Name: "Xbox", URL: srv.URL}

	snap := service.CheckProduct(context.Background(), product)

	assert.Equal(t, models.StatusSuccess, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Equal(t, int64(63600000), snap.Result.Amount)
	assert.Equal(t, "۶۳۶۰۰۰۰۰", snap.Result.NumeralText)

	cached, ok := priceCache.Get(srv.URL)
	require.True(t, ok)
	assert.Equal(t, models.StatusSuccess, cached.Status)
}

func TestPriceService_CheckProductNoPrice(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>out of stock</p></body></html>`))
	}))
	defer srv.Close()

	service, _, _ := newService(t)
	snap := service.CheckProduct(context.Background(), models.Product{Name: "Xbox", URL: srv.URL})

	assert.Equal(t, models.StatusNotFound, snap.Status)
	assert.Nil(t, snap.Result)
	assert.NotEmpty(t, snap.Err)
}

func TestPriceService_CheckProductFetchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	service, _, _ := newService(t)
	snap := service.CheckProduct(context.Background(), models.Product{Name: "Xbox", URL: srv.URL})

	assert.Equal(t, models.StatusError, snap.Status)
	assert.Nil(t, snap.Result)
}

func TestPriceService_CheckAll(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer bad.Close()

	service, products, _ := newService(t)
	require.NoError(t, products.Add(models.Product{Name: "good", URL: good.URL}))
	require.NoError(t, products.Add(models.Product{Name: "bad", URL: bad.URL}))

	summary, err := service.CheckAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestPriceService_ProductPriceChecksOnMiss(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productPage))
	}))
	defer srv.Close()

	service, _, _ := newService(t)
	product := models.Product{Name: "Xbox", URL: srv.URL}

	resp := service.ProductPrice(context.Background(), product)

	require.NotNil(t, resp.Price)
	assert.Equal(t, "۶۳۶۰۰۰۰۰", *resp.Price)
	require.NotNil(t, resp.Amount)
	assert.Equal(t, int64(63600000), *resp.Amount)
	assert.NotNil(t, resp.Timestamp)
}

func TestToProductPrice_NullPriceShape(t *testing.T) {
	t.Parallel()

	product := models.Product{Name: "Xbox", URL: "https://techsiro.com/p/1"}
	snap := cache.Snapshot{Status: models.StatusError, Err: "timeout", CheckedAt: time.Now()}

	resp := services.ToProductPrice(product, snap)

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	// A failed check still yields a well-formed object with price: null
	val, present := decoded["price"]
	assert.True(t, present)
	assert.Nil(t, val)
	assert.Equal(t, "error", decoded["status"])
}

func TestPriceService_CachedPriceNeverFetches(t *testing.T) {
	t.Parallel()

	service, _, _ := newService(t)
	product := models.Product{Name: "Xbox", URL: "http://127.0.0.1:1/unreachable"}

	resp := service.CachedPrice(product)

	assert.Nil(t, resp.Price)
	assert.Empty(t, resp.Status)
	assert.Nil(t, resp.Timestamp)
}
