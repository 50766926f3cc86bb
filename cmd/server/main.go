package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dramscan/backend/config"
	httpDelivery "github.com/dramscan/backend/internal/delivery/http"
	"github.com/dramscan/backend/internal/domain"
	"github.com/dramscan/backend/internal/infrastructure/rakuten"
	"github.com/dramscan/backend/internal/infrastructure/yahoo"
	"github.com/dramscan/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting DramScan Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	debug := cfg.Server.Environment == "development"

	// Initialize marketplace clients
	rakutenClient := rakuten.NewClient(cfg.Rakuten.ApplicationID, cfg.Rakuten.BaseURL, cfg.RateLimit.Rakuten)
	yahooClient := yahoo.NewClient(cfg.Yahoo.AppID, cfg.Yahoo.BaseURL, cfg.RateLimit.Yahoo)

	if debug {
		rakutenClient.SetDebug(true)
		yahooClient.SetDebug(true)
		log.Printf("Marketplace client debug mode enabled")
	}

	log.Printf("Rakuten API configured: %s", cfg.Rakuten.BaseURL)
	log.Printf("Yahoo API configured: %s", cfg.Yahoo.BaseURL)

	// Initialize usecase layer
	canonicalizer := usecase.NewCanonicalizer(cfg.Canonical.NoiseWords, debug)
	filter := usecase.NewCategoryFilter(usecase.CategoryFilterConfig{
		RequiredKeywords:   cfg.Filter.RequiredKeywords,
		ExcludedKeywords:   cfg.Filter.ExcludedKeywords,
		SellerBlacklist:    cfg.Filter.SellerBlacklist,
		Bypass:             cfg.Filter.Bypass,
		EnableDebugLogging: debug,
	})

	offerService := usecase.NewOfferService(
		[]domain.MarketplaceClient{rakutenClient, yahooClient},
		canonicalizer,
		filter,
		usecase.OfferServiceConfig{
			LowerQuantile:      cfg.Pricing.LowerQuantile,
			UpperQuantile:      cfg.Pricing.UpperQuantile,
			PageSize:           cfg.Results.PageSize,
			EnableDebugLogging: debug,
		},
	)

	if cfg.Filter.Bypass {
		log.Printf("WARNING: category filter bypass is enabled - all listings will pass")
	}
	log.Printf("Pricing: quantiles=[%.2f, %.2f], page size=%d",
		cfg.Pricing.LowerQuantile, cfg.Pricing.UpperQuantile, cfg.Results.PageSize)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(offerService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
