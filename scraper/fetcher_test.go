package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tomantrack/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "tomantrack-test/1.0"

func TestFetcher_FetchParsesPage(t *testing.T) {
	t.Parallel()

	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head><title>Xbox Series X</title></head><body><p class="font-bold">۶۳٬۶۰۰٬۰۰۰ تومان</p></body></html>`))
	}))
	defer srv.Close()

	f := scraper.NewFetcher(5*time.Second, testUserAgent)
	doc, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Xbox Series X", doc.Title())
	assert.Equal(t, testUserAgent, gotUserAgent)
}

func TestFetcher_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := scraper.NewFetcher(5*time.Second, testUserAgent)
	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetcher_BotWall(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Just a moment...</title></head><body>Checking your browser before accessing the site.</body></html>`))
	}))
	defer srv.Close()

	f := scraper.NewFetcher(5*time.Second, testUserAgent)
	_, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot wall")
}

func TestFetcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := scraper.NewFetcher(5*time.Second, testUserAgent)
	_, err := f.Fetch(ctx, srv.URL)

	assert.Error(t, err)
}

func TestBotDetector(t *testing.T) {
	t.Parallel()

	bd := scraper.NewBotDetector()

	blocked, reason := bd.DetectBotWall("Please verify you are human", "")
	assert.True(t, blocked)
	assert.NotEmpty(t, reason)

	blocked, _ = bd.DetectBotWall("<p>۶۳٬۶۰۰٬۰۰۰ تومان</p>", "Xbox Series X")
	assert.False(t, blocked)
}
