package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"tomantrack/cache"
	"tomantrack/config"
	"tomantrack/scraper"
	"tomantrack/services"
	"tomantrack/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T) *PriceChecker {
	t.Helper()

	dir := t.TempDir()
	products := storage.NewProductStore(filepath.Join(dir, "products.json"))
	settings := storage.NewSettingsStore(filepath.Join(dir, "settings.json"))

	siteCfg := config.LoadSiteConfig()
	fetcher := scraper.NewFetcher(time.Second, "tomantrack-test/1.0")
	extractor := scraper.NewExtractor(siteCfg)
	service := services.NewPriceService(fetcher, extractor, products, settings, cache.New(), 1)

	return NewPriceChecker(service, settings)
}

func TestPriceChecker_RescheduleKeepsSingleEntry(t *testing.T) {
	t.Parallel()

	pc := newTestChecker(t)
	pc.Start()
	defer pc.Stop()

	require.Len(t, pc.cron.Entries(), 1)
	first := pc.entryID

	pc.Reschedule(90 * time.Second)
	assert.Len(t, pc.cron.Entries(), 1, "old entry must be dropped once the new one is in")
	assert.NotEqual(t, first, pc.entryID)
	assert.Equal(t, 90*time.Second, pc.interval)
}

func TestPriceChecker_RescheduleSameIntervalIsNoop(t *testing.T) {
	t.Parallel()

	pc := newTestChecker(t)
	pc.Start()
	defer pc.Stop()

	pc.Reschedule(90 * time.Second)
	current := pc.entryID

	pc.Reschedule(90 * time.Second)
	assert.Equal(t, current, pc.entryID)
	assert.Len(t, pc.cron.Entries(), 1)
}

func TestPriceChecker_ScheduleFloorsInterval(t *testing.T) {
	t.Parallel()

	pc := newTestChecker(t)
	require.NoError(t, pc.schedule(time.Second))
	defer pc.Stop()

	assert.Equal(t, 5*time.Second, pc.interval)
}
