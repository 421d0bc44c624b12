package services

import (
	"context"
	"log"
	"sync"
	"time"

	"tomantrack/cache"
	"tomantrack/models"
	"tomantrack/numerals"
	"tomantrack/scraper"
	"tomantrack/storage"

	"golang.org/x/sync/errgroup"
)

// PriceService runs price checks: fetch the page, extract the price, cache
// the snapshot and raise the target-price alert. Both the scheduler and the
// HTTP handlers go through it, so a manual check and a scheduled one behave
// identically.
type PriceService struct {
	fetcher       *scraper.Fetcher
	extractor     *scraper.Extractor
	products      *storage.ProductStore
	settings      *storage.SettingsStore
	cache         *cache.PriceCache
	maxConcurrent int
}

// NewPriceService creates a price service
func NewPriceService(
	fetcher *scraper.Fetcher,
	extractor *scraper.Extractor,
	products *storage.ProductStore,
	settings *storage.SettingsStore,
	priceCache *cache.PriceCache,
	maxConcurrent int,
) *PriceService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PriceService{
		fetcher:       fetcher,
		extractor:     extractor,
		products:      products,
		settings:      settings,
		cache:         priceCache,
		maxConcurrent: maxConcurrent,
	}
}

// CheckProduct checks one product and caches the result. Every failure
// class (fetch error, bot wall, extraction miss) becomes a snapshot with a
// nil price; nothing propagates as an error, so one bad product never
// blocks a batch.
func (s *PriceService) CheckProduct(ctx context.Context, product models.Product) cache.Snapshot {
	snap := cache.Snapshot{CheckedAt: time.Now()}

	doc, err := s.fetcher.Fetch(ctx, product.URL)
	if err != nil {
		log.Printf("Failed to fetch %s: %v", product.Name, err)
		snap.Status = models.StatusError
		snap.Err = err.Error()
		s.cache.Put(product.URL, snap)
		return snap
	}

	price := s.extractor.Extract(doc)
	if price == nil {
		log.Printf("No price found for %s", product.Name)
		snap.Status = models.StatusNotFound
		snap.Err = "no price found"
		s.cache.Put(product.URL, snap)
		return snap
	}

	log.Printf("Current price for %s: %s تومان", product.Name, price.NumeralText)
	snap.Status = models.StatusSuccess
	snap.Result = price
	s.cache.Put(product.URL, snap)

	s.checkAlarm(product, price)
	return snap
}

// CheckAll checks every stored product with bounded fan-out. Products are
// independent; the summary counts how each one ended up.
func (s *PriceService) CheckAll(ctx context.Context) (models.RefreshSummary, error) {
	var summary models.RefreshSummary

	products, err := s.products.List()
	if err != nil {
		return summary, err
	}
	if len(products) == 0 {
		return summary, nil
	}

	log.Printf("Checking prices for %d products", len(products))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)

	for _, product := range products {
		product := product
		g.Go(func() error {
			snap := s.CheckProduct(ctx, product)

			mu.Lock()
			summary.Checked++
			if snap.Status == models.StatusSuccess {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return summary, nil
}

// ProductPrice returns the API response for one product, checking
// synchronously when no snapshot exists yet.
func (s *PriceService) ProductPrice(ctx context.Context, product models.Product) models.ProductPrice {
	snap, ok := s.cache.Get(product.URL)
	if !ok {
		snap = s.CheckProduct(ctx, product)
	}
	return ToProductPrice(product, snap)
}

// CachedPrice returns the API response for one product from the cache only.
// Products never checked yet come back with a null price and empty status.
func (s *PriceService) CachedPrice(product models.Product) models.ProductPrice {
	snap, ok := s.cache.Get(product.URL)
	if !ok {
		return models.ProductPrice{Name: product.Name, URL: product.URL}
	}
	return ToProductPrice(product, snap)
}

// EvictProduct drops the cached snapshot for a removed product
func (s *PriceService) EvictProduct(url string) {
	s.cache.Delete(url)
}

// checkAlarm logs the target-price alert when the alarm is enabled and the
// extracted price reached the target.
func (s *PriceService) checkAlarm(product models.Product, price *scraper.ExtractedPrice) {
	settings := s.settings.Get()
	if !settings.AlarmEnabled || settings.TargetPrice <= 0 {
		return
	}
	if price.Amount <= settings.TargetPrice {
		log.Printf("🚨 ALERT: %s reached target price: %s تومان (target %s)",
			product.Name, price.NumeralText, numerals.FormatGrouped(settings.TargetPrice))
	}
}

// ToProductPrice builds the per-product API shape from a snapshot
func ToProductPrice(product models.Product, snap cache.Snapshot) models.ProductPrice {
	resp := models.ProductPrice{
		Name:   product.Name,
		URL:    product.URL,
		Status: snap.Status,
		Error:  snap.Err,
	}
	if !snap.CheckedAt.IsZero() {
		checkedAt := snap.CheckedAt
		resp.Timestamp = &checkedAt
	}
	if snap.Result != nil {
		text := snap.Result.NumeralText
		amount := snap.Result.Amount
		resp.Price = &text
		resp.Amount = &amount
	}
	return resp
}
