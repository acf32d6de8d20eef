package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"price-hunter/internal/types"
	"price-hunter/pricing"
)

const serperStoreName = "Google Shopping"

type serperRequest struct {
	Query    string `json:"q"`
	Country  string `json:"gl"`
	Language string `json:"hl"`
}

type serperResponse struct {
	Shopping []serperItem `json:"shopping"`
}

type serperItem struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl"`
	Source   string `json:"source"`
}

// SerperAdapter searches Google Shopping through the serper.dev API
type SerperAdapter struct {
	*BaseAdapter
}

// NewSerperAdapter creates a new Serper adapter
func NewSerperAdapter(config *types.Config, logger types.Logger) *SerperAdapter {
	return &SerperAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// GetStoreName returns the store name
func (s *SerperAdapter) GetStoreName() string {
	return serperStoreName
}

// Search asks the shopping endpoint for query and maps every relevant offer.
// Offers keep the merchant reported by Google as their store.
func (s *SerperAdapter) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	if s.config.SerperAPIKey == "" {
		return nil, errors.New("SERPER_API_KEY not configured")
	}

	startTime := time.Now()
	s.logger.Infof("Searching %s for %q", serperStoreName, query)

	var resp serperResponse
	err := s.httpClient.PostJSON(ctx, s.config.SerperURL,
		map[string]string{"X-API-KEY": s.config.SerperAPIKey},
		serperRequest{Query: query, Country: s.config.Country, Language: s.config.Language},
		&resp,
	)
	if err != nil {
		return nil, fmt.Errorf("shopping search failed: %w", err)
	}

	candidates := s.mapItems(resp.Shopping, query)
	s.logger.Infof("%s found %d items (%d relevant) in %v", serperStoreName, len(resp.Shopping), len(candidates), time.Since(startTime))
	return candidates, nil
}

func (s *SerperAdapter) mapItems(items []serperItem, query string) []types.Candidate {
	matcher := s.filter.ForQuery(query)
	candidates := []types.Candidate{}

	for _, item := range items {
		link := ResolveURL("", item.Link)
		if item.Title == "" || link == "" {
			continue
		}
		if !matcher.Match(item.Title) {
			s.logger.Debugf("Skipping irrelevant item %q", item.Title)
			continue
		}

		store := strings.TrimSpace(item.Source)
		if store == "" {
			store = serperStoreName
		}

		price, err := pricing.ParsePrice(item.Price)
		if err != nil || !pricing.IsValid(price) {
			// Kept but demoted: the listing is real, only its price text is odd
			candidate := s.NewCandidate(item.Title, pricing.SentinelPrice, link, item.ImageURL, store)
			candidate.FormattedPrice = item.Price
			candidates = append(candidates, candidate)
			continue
		}

		candidates = append(candidates, s.NewCandidate(item.Title, price, link, item.ImageURL, store))
	}

	return candidates
}
