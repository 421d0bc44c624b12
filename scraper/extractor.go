package scraper

import (
	"regexp"
	"strings"

	"tomantrack/config"
	"tomantrack/numerals"
)

// ExtractedPrice is the result of one successful extraction. NumeralText
// preserves the digit script as it appeared on the page, with thousands
// separators stripped; Amount is the canonical integer value.
type ExtractedPrice struct {
	NumeralText string `json:"numeral_text"`
	Amount      int64  `json:"amount"`
}

// PriceCandidate is one element under consideration while scanning a page.
type PriceCandidate struct {
	Class       string
	RawText     string
	NumeralText string
}

// tier is one ranked extraction strategy. Tiers are tried in priority
// order; the first tier that produces a price wins.
type tier struct {
	name    string
	extract func(*Document) *ExtractedPrice
}

// Extractor locates the single current-price element in a product page and
// normalizes its numeral text. It is a pure function of the input document:
// no state is kept between calls, so one Extractor is safe to share across
// goroutines.
type Extractor struct {
	cfg          *config.SiteConfig
	pricePattern *regexp.Regexp
	tiers        []tier
}

// NewExtractor creates an extractor for the given site configuration.
func NewExtractor(cfg *config.SiteConfig) *Extractor {
	e := &Extractor{
		cfg: cfg,
		// One or more Persian/ASCII digits or thousands separators,
		// anchored on the currency word. RE2 keeps this linear in the
		// input, which matters because the pages are third-party HTML.
		pricePattern: regexp.MustCompile(`([\d۰-۹٬,]+)\s*` + regexp.QuoteMeta(cfg.CurrencyWord)),
	}
	e.tiers = []tier{
		{name: "structural", extract: e.extractStructural},
		{name: "selector", extract: e.extractSelector},
	}
	return e
}

// Extract returns the current price found in the document, or nil when no
// qualifying element exists. Absence is a normal outcome, not an error: the
// caller maps it to a null price.
func (e *Extractor) Extract(doc *Document) *ExtractedPrice {
	if doc == nil {
		return nil
	}
	for _, t := range e.tiers {
		if price := t.extract(doc); price != nil {
			return price
		}
	}
	return nil
}

// extractStructural scans paragraph elements in document order. On the
// current page family exactly one bold, non-struck, non-discount paragraph
// carries the live price, and it precedes every other currency-bearing
// element, so the first qualifying match wins.
func (e *Extractor) extractStructural(doc *Document) *ExtractedPrice {
	var result *ExtractedPrice

	doc.EachParagraph(func(n Node) bool {
		text := strings.TrimSpace(n.Text)

		// Struck-through elements hold the superseded price, never the
		// current one.
		if strings.Contains(n.Class, e.cfg.StruckClassMarker) {
			return true
		}

		// "You save X Toman" style text carries a numeral plus the
		// currency word without being a price.
		if e.containsDiscountWord(text) {
			return true
		}

		if !strings.Contains(n.Class, e.cfg.BoldClassMarker) || !strings.Contains(text, e.cfg.CurrencyWord) {
			return true
		}

		cand := e.capture(n.Class, text)
		if cand == nil {
			return true
		}

		amount, err := numerals.ToCanonicalInteger(cand.NumeralText)
		if err != nil {
			return true
		}
		// Stray small numbers (quantities, IDs) sometimes precede the
		// currency word; a real Toman price is always above the floor.
		if amount <= e.cfg.MinPriceAmount {
			return true
		}

		result = &ExtractedPrice{NumeralText: cand.NumeralText, Amount: amount}
		return false
	})

	return result
}

// extractSelector is the looser fallback used only when the structural scan
// finds nothing: probe generic price selectors in priority order and take
// the first capture that converts, with no discount or magnitude filtering.
func (e *Extractor) extractSelector(doc *Document) *ExtractedPrice {
	for _, selector := range e.cfg.FallbackSelectors {
		var result *ExtractedPrice

		doc.EachMatch(selector, func(n Node) bool {
			cand := e.capture(n.Class, n.Text)
			if cand == nil {
				return true
			}
			amount, err := numerals.ToCanonicalInteger(cand.NumeralText)
			if err != nil {
				return true
			}
			result = &ExtractedPrice{NumeralText: cand.NumeralText, Amount: amount}
			return false
		})

		if result != nil {
			return result
		}
	}

	return nil
}

// capture extracts the numeral substring preceding the currency word and
// strips its thousands separators.
func (e *Extractor) capture(class, text string) *PriceCandidate {
	matches := e.pricePattern.FindStringSubmatch(text)
	if matches == nil {
		return nil
	}
	return &PriceCandidate{
		Class:       class,
		RawText:     text,
		NumeralText: numerals.StripSeparators(matches[1]),
	}
}

func (e *Extractor) containsDiscountWord(text string) bool {
	for _, word := range e.cfg.DiscountWords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
