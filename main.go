package main

import (
	"log"
	"net/http"
	"os"

	"tomantrack/cache"
	"tomantrack/config"
	"tomantrack/handlers"
	"tomantrack/middleware"
	"tomantrack/scheduler"
	"tomantrack/scraper"
	"tomantrack/services"
	"tomantrack/storage"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	siteCfg := config.LoadSiteConfig()

	// File-backed stores
	productStore := storage.NewProductStore(cfg.ProductsFile)
	settingsStore := storage.NewSettingsStore(cfg.SettingsFile)

	// Extraction pipeline
	fetcher := scraper.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)
	extractor := scraper.NewExtractor(siteCfg)
	priceCache := cache.New()

	service := services.NewPriceService(fetcher, extractor, productStore, settingsStore, priceCache, cfg.MaxConcurrentChecks)

	// Periodic refresh
	priceChecker := scheduler.NewPriceChecker(service, settingsStore)
	priceChecker.Start()
	defer priceChecker.Stop()

	// Async manual refreshes
	taskManager := scheduler.NewTaskManager(service.CheckAll, cfg.MaxTaskWorkers)
	defer taskManager.Stop()

	h := handlers.NewHandlers(productStore, settingsStore, service, siteCfg, priceChecker, taskManager)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerSecond))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.GetProducts).Methods("GET")
	api.HandleFunc("/products", h.AddProduct).Methods("POST")
	api.HandleFunc("/products/{index}", h.DeleteProduct).Methods("DELETE")
	api.HandleFunc("/price/{index}", h.GetPrice).Methods("GET")
	api.HandleFunc("/prices", h.GetPrices).Methods("GET")
	api.HandleFunc("/settings", h.GetSettings).Methods("GET")
	api.HandleFunc("/settings", h.UpdateSettings).Methods("POST")
	api.HandleFunc("/scrape", h.TriggerScrape).Methods("POST")
	api.HandleFunc("/tasks/{taskId}", h.GetTaskStatus).Methods("GET")
	api.HandleFunc("/tasks", h.GetTaskStats).Methods("GET")

	// Serve the bundled UI (and alarm sound) when the static dir exists
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("Server starting on %s", cfg.Addr())
	log.Printf("   GET    /health - Health check")
	log.Printf("   GET    /api/products - List products with cached prices")
	log.Printf("   POST   /api/products - Add a product to monitor")
	log.Printf("   DELETE /api/products/{index} - Remove a product")
	log.Printf("   GET    /api/price/{index} - Current price for one product")
	log.Printf("   GET    /api/prices - Current prices for all products")
	log.Printf("   GET    /api/settings - Monitoring settings")
	log.Printf("   POST   /api/scrape - Refresh all prices now")

	log.Fatal(http.ListenAndServe(cfg.Addr(), c.Handler(r)))
}
