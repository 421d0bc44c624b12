package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tomantrack/services"
	"tomantrack/storage"

	"github.com/robfig/cron/v3"
)

// PriceChecker refreshes all tracked prices on the interval stored in
// settings. Settings updates reschedule the running job without a restart.
type PriceChecker struct {
	cron     *cron.Cron
	service  *services.PriceService
	settings *storage.SettingsStore

	mu       sync.Mutex
	entryID  cron.EntryID
	interval time.Duration
}

// NewPriceChecker creates a price checker
func NewPriceChecker(service *services.PriceService, settings *storage.SettingsStore) *PriceChecker {
	return &PriceChecker{
		cron:     cron.New(),
		service:  service,
		settings: settings,
	}
}

// Start schedules the periodic refresh and runs one immediately
func (pc *PriceChecker) Start() {
	interval := pc.settings.Get().RefreshIntervalDuration()
	if err := pc.schedule(interval); err != nil {
		log.Printf("Failed to schedule price checker: %v", err)
		return
	}

	// First run right away so the cache is warm before the first tick
	go pc.checkAllPrices()

	pc.cron.Start()
	log.Printf("Price checker scheduled to run every %v", interval)
}

// Stop stops the scheduled price checking
func (pc *PriceChecker) Stop() {
	ctx := pc.cron.Stop()
	<-ctx.Done()
}

// Reschedule swaps the refresh interval for the running job. No-op when the
// interval is unchanged.
func (pc *PriceChecker) Reschedule(interval time.Duration) {
	pc.mu.Lock()
	if interval == pc.interval {
		pc.mu.Unlock()
		return
	}
	oldEntryID := pc.entryID
	pc.mu.Unlock()

	// Register the replacement before dropping the old entry so a failed
	// AddFunc leaves the previous schedule running.
	if err := pc.schedule(interval); err != nil {
		log.Printf("Failed to reschedule price checker: %v", err)
		return
	}
	pc.cron.Remove(oldEntryID)
	log.Printf("Price checker rescheduled to run every %v", interval)
}

func (pc *PriceChecker) schedule(interval time.Duration) error {
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}

	id, err := pc.cron.AddFunc(fmt.Sprintf("@every %ds", int(interval.Seconds())), pc.checkAllPrices)
	if err != nil {
		return err
	}

	pc.mu.Lock()
	pc.entryID = id
	pc.interval = interval
	pc.mu.Unlock()
	return nil
}

// checkAllPrices checks prices for all tracked products
func (pc *PriceChecker) checkAllPrices() {
	log.Println("Starting scheduled price check for all tracked products")

	summary, err := pc.service.CheckAll(context.Background())
	if err != nil {
		log.Printf("Scheduled price check failed: %v", err)
		return
	}

	if summary.Checked == 0 {
		log.Println("No products to check")
		return
	}

	log.Printf("Scheduled price check done: %d checked, %d succeeded, %d failed",
		summary.Checked, summary.Succeeded, summary.Failed)
}
