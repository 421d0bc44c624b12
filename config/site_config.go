package config

import (
	"os"
	"strconv"
	"strings"
)

// SiteConfig holds the Techsiro-specific extraction heuristics. The markup
// the site serves changes without notice, so everything the extractor keys
// on (class markers, vocabulary, magnitude floor, fallback selectors) is
// tunable through the environment rather than baked in.
type SiteConfig struct {
	AllowedDomain     string
	CurrencyWord      string
	BoldClassMarker   string
	StruckClassMarker string
	DiscountWords     []string
	MinPriceAmount    int64
	FallbackSelectors []string
}

// LoadSiteConfig loads the Techsiro extraction configuration from
// environment variables, falling back to defaults tuned against the
// current product-page markup.
func LoadSiteConfig() *SiteConfig {
	cfg := &SiteConfig{
		AllowedDomain:     getEnv("SITE_ALLOWED_DOMAIN", "techsiro.com"),
		CurrencyWord:      getEnv("SITE_CURRENCY_WORD", "تومان"),
		BoldClassMarker:   getEnv("SITE_BOLD_CLASS_MARKER", "bold"),
		StruckClassMarker: getEnv("SITE_STRUCK_CLASS_MARKER", "line-through"),
		DiscountWords:     []string{"تخفیف", "صرفه‌جویی", "سود شما"},
		MinPriceAmount:    1000,
		FallbackSelectors: []string{".price", "#price", "[class*='price']", "[id*='price']"},
	}

	if words := os.Getenv("SITE_DISCOUNT_WORDS"); words != "" {
		cfg.DiscountWords = splitCSV(words)
	}
	if min := os.Getenv("SITE_MIN_PRICE_AMOUNT"); min != "" {
		if n, err := strconv.ParseInt(min, 10, 64); err == nil && n >= 0 {
			cfg.MinPriceAmount = n
		}
	}
	if selectors := os.Getenv("SITE_FALLBACK_SELECTORS"); selectors != "" {
		cfg.FallbackSelectors = splitCSV(selectors)
	}

	return cfg
}

// IsAllowedURL checks that a product URL belongs to the monitored site
func (c *SiteConfig) IsAllowedURL(rawURL string) bool {
	return strings.Contains(rawURL, c.AllowedDomain)
}
