package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"price-hunter/extractor"
	"price-hunter/internal/types"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		queryFlag  = flag.String("query", "", "Product to search for")
		storesFlag = flag.String("stores", "kabum", "Comma-separated list of stores (kabum, google, mercadolivre)")
		outputFlag = flag.String("output", "", "Output file path (default: stdout)")
		timeout    = flag.Duration("timeout", 0, "Per-store time budget (default: SCRAPER_TIMEOUT or 90s)")
		httpOnly   = flag.Bool("http-only", false, "Use HTTP APIs only (disable headless browser)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *queryFlag == "" {
		log.Fatal("--query flag is required")
	}

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.LoadConfigFromEnv()
	if *timeout > 0 {
		config.Timeout = *timeout
	}
	config.UseHeadlessBrowser = !*httpOnly

	priceExtractor := extractor.NewExtractor(config, logger)
	defer priceExtractor.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	selection := extractor.ParseStoreList(*storesFlag)

	if *outputFlag != "" {
		if _, err := priceExtractor.SearchToJSON(ctx, *queryFlag, selection, *outputFlag); err != nil {
			logger.Fatalf("Search failed: %v", err)
		}
		return
	}

	winner, err := priceExtractor.SearchProducts(ctx, *queryFlag, selection)
	if err != nil {
		logger.Fatalf("Search failed: %v", err)
	}

	jsonData, err := json.MarshalIndent(winner, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal winner: %v", err)
	}
	fmt.Println(string(jsonData))
}
