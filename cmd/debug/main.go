package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"price-hunter/adapters"
	"price-hunter/internal/types"
	"price-hunter/utils"
)

// Renders one Kabum search and prints what the card selectors read, before any filtering.
// Useful when the store changes its markup and the adapter starts returning zero items.
func main() {
	_ = godotenv.Load()

	query := flag.String("query", "playstation 5", "Search text to type into the store")
	limit := flag.Int("limit", 5, "Number of cards to inspect")
	dump := flag.String("dump", "", "Also write the rendered HTML to this file")
	flag.Parse()

	config := types.LoadConfigFromEnv()
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	browserClient := utils.NewBrowserClient(config, logger)
	script := adapters.KabumSearchScript(config, *query)
	page, err := browserClient.RunSearch(context.Background(), script)
	if err != nil {
		logger.Fatalf("Search session failed: %v", err)
	}

	fmt.Printf("URL: %s\n", page.URL)
	fmt.Printf("Title: %s\n", page.Title)
	fmt.Printf("Results container found: %t\n", page.ResultsFound)

	if *dump != "" {
		if err := os.WriteFile(*dump, []byte(page.HTML), 0644); err != nil {
			logger.Errorf("Failed to write dump: %v", err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		logger.Fatalf("Failed to parse HTML: %v", err)
	}

	fmt.Printf("article nodes: %d, %s nodes: %d\n",
		doc.Find("article").Length(), script.ResultsSelector, doc.Find(script.ResultsSelector).Length())

	for i, card := range adapters.InspectCards(doc, *limit) {
		data, _ := json.MarshalIndent(card, "  ", "  ")
		fmt.Printf("  %d: %s\n", i+1, data)
	}
}
