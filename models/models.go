package models

import (
	"fmt"
	"time"
)

// Check statuses as exposed through the API.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Product is one entry in the persisted product list.
type Product struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProductPrice is the per-product response shape. Price carries the numeral
// text as captured from the page, or null when the price could not be
// determined; the caller never sees an HTTP error for a failed extraction.
type ProductPrice struct {
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Price     *string    `json:"price"`
	Amount    *int64     `json:"amount,omitempty"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	Timestamp *time.Time `json:"timestamp"`
}

// AddProductRequest is the body of POST /api/products
type AddProductRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Settings holds the user-tunable monitoring settings persisted in
// settings.json.
type Settings struct {
	RefreshInterval int   `json:"refresh_interval"` // seconds
	TargetPrice     int64 `json:"target_price"`
	AlarmEnabled    bool  `json:"alarm_enabled"`
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{
		RefreshInterval: 30,
		TargetPrice:     1000000,
		AlarmEnabled:    true,
	}
}

// Validate checks settings invariants
func (s Settings) Validate() error {
	if s.RefreshInterval < 5 {
		return fmt.Errorf("refresh interval must be at least 5 seconds")
	}
	if s.TargetPrice < 0 {
		return fmt.Errorf("target price cannot be negative")
	}
	return nil
}

// RefreshIntervalDuration returns the refresh interval as a time.Duration
func (s Settings) RefreshIntervalDuration() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

// UpdateSettingsRequest is the body of POST /api/settings. Only the fields
// present in the request are applied.
type UpdateSettingsRequest struct {
	RefreshInterval *int   `json:"refresh_interval"`
	TargetPrice     *int64 `json:"target_price"`
	AlarmEnabled    *bool  `json:"alarm_enabled"`
}

// Apply merges the request into existing settings and validates the result.
func (r UpdateSettingsRequest) Apply(s Settings) (Settings, error) {
	if r.RefreshInterval != nil {
		s.RefreshInterval = *r.RefreshInterval
	}
	if r.TargetPrice != nil {
		s.TargetPrice = *r.TargetPrice
	}
	if r.AlarmEnabled != nil {
		s.AlarmEnabled = *r.AlarmEnabled
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
