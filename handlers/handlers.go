package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tomantrack/config"
	"tomantrack/models"
	"tomantrack/scheduler"
	"tomantrack/services"
	"tomantrack/storage"

	"github.com/gorilla/mux"
)

// Handlers carries the HTTP surface of the monitor
type Handlers struct {
	products *storage.ProductStore
	settings *storage.SettingsStore
	service  *services.PriceService
	siteCfg  *config.SiteConfig
	checker  *scheduler.PriceChecker
	tasks    *scheduler.TaskManager
}

// NewHandlers creates the handler set
func NewHandlers(
	products *storage.ProductStore,
	settings *storage.SettingsStore,
	service *services.PriceService,
	siteCfg *config.SiteConfig,
	checker *scheduler.PriceChecker,
	tasks *scheduler.TaskManager,
) *Handlers {
	return &Handlers{
		products: products,
		settings: settings,
		service:  service,
		siteCfg:  siteCfg,
		checker:  checker,
		tasks:    tasks,
	}
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "tomantrack",
	})
}

// GetProducts returns all products with their cached price information
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List()
	if err != nil {
		log.Printf("Failed to load products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load products")
		return
	}

	prices := make([]models.ProductPrice, 0, len(products))
	for _, product := range products {
		prices = append(prices, h.service.CachedPrice(product))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": prices,
	})
}

// AddProduct adds a new product to monitor
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req models.AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	url := strings.TrimSpace(req.URL)

	if name == "" || url == "" {
		writeError(w, http.StatusBadRequest, "Name and URL are required")
		return
	}

	if !h.siteCfg.IsAllowedURL(url) {
		writeError(w, http.StatusBadRequest, "URL must be from "+h.siteCfg.AllowedDomain)
		return
	}

	product := models.Product{Name: name, URL: url}
	if err := h.products.Add(product); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			writeError(w, http.StatusBadRequest, "Product URL already exists")
			return
		}
		log.Printf("Failed to add product: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save product")
		return
	}

	// Warm the cache for the new product without blocking the response.
	// Detached context: the check outlives this request.
	go h.service.CheckProduct(context.Background(), product)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"product": product,
	})
}

// DeleteProduct deletes a product by its list position
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexVar(w, r)
	if !ok {
		return
	}

	removed, err := h.products.RemoveAt(index)
	if err != nil {
		if strings.Contains(err.Error(), "invalid product index") {
			writeError(w, http.StatusBadRequest, "Invalid product index")
			return
		}
		log.Printf("Failed to delete product: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	h.service.EvictProduct(removed.URL)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": removed,
	})
}

// GetPrice returns the price for the product at the given position,
// checking synchronously when nothing is cached yet. A failed check is a
// 200 with price null, never an HTTP error.
func (h *Handlers) GetPrice(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexVar(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(index)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product index")
		return
	}

	writeJSON(w, http.StatusOK, h.service.ProductPrice(r.Context(), product))
}

// GetPrices returns the cached prices for all products in list order
func (h *Handlers) GetPrices(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List()
	if err != nil {
		log.Printf("Failed to load products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load products")
		return
	}

	prices := make([]models.ProductPrice, 0, len(products))
	for _, product := range products {
		prices = append(prices, h.service.CachedPrice(product))
	}

	writeJSON(w, http.StatusOK, prices)
}

// GetSettings returns the current settings
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": h.settings.Get(),
	})
}

// UpdateSettings applies a partial settings update
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.settings.Update(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.checker != nil {
		h.checker.Reschedule(settings.RefreshIntervalDuration())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": settings,
	})
}

// TriggerScrape starts an async refresh of all product prices
func (h *Handlers) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	count, err := h.products.Len()
	if err != nil {
		log.Printf("Failed to load products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load products")
		return
	}
	if count == 0 {
		writeError(w, http.StatusBadRequest, "No products to scrape")
		return
	}

	task := h.tasks.SubmitTask()
	if task.Status == models.TaskStatusFailed {
		writeError(w, http.StatusServiceUnavailable, "Refresh queue is full, try again later")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"task":    task,
	})
}

// GetTaskStatus returns the status of an async refresh task
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	task, exists := h.tasks.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats returns task manager statistics
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tasks.GetStats())
}

// indexVar parses the {index} route variable
func (h *Handlers) indexVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "Invalid product index")
		return 0, false
	}
	return index, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
