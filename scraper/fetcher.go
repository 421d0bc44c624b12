package scraper

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// Fetcher retrieves product pages over plain HTTP. The price is present in
// the initial HTML the site serves, so no browser automation is involved;
// the request just has to look like it came from a desktop browser.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	botDetector *BotDetector
}

// NewFetcher creates a fetcher with the given request timeout and
// User-Agent. Certificate verification is disabled because the target
// site's TLS chain is broken for non-Iranian clients.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		userAgent:   userAgent,
		botDetector: NewBotDetector(),
	}
}

// Fetch downloads and parses one product page. Network errors, non-2xx
// responses and bot walls all come back as errors; the caller surfaces them
// as a null price rather than propagating further.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed for %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	doc := ParseDocument(resp.Body)

	if blocked, reason := f.botDetector.DetectBotWall(doc.BodyText(), doc.Title()); blocked {
		return nil, fmt.Errorf("bot wall detected for %s: %s", url, reason)
	}

	return doc, nil
}
