package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"price-hunter/internal/types"
	"price-hunter/pricing"
)

const mercadoLivreStoreName = "Mercado Livre"

type mercadoLivreResponse struct {
	Results []mercadoLivreItem `json:"results"`
}

type autosuggestResponse struct {
	SuggestedQueries []struct {
		Query string `json:"q"`
	} `json:"suggested_queries"`
}

type mercadoLivreItem struct {
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Permalink string  `json:"permalink"`
	Thumbnail string  `json:"thumbnail"`
}

// MercadoLivreAdapter queries the public Mercado Livre product search API.
// Prices arrive as numbers, so no price text is parsed.
type MercadoLivreAdapter struct {
	*BaseAdapter
}

// NewMercadoLivreAdapter creates a new Mercado Livre adapter
func NewMercadoLivreAdapter(config *types.Config, logger types.Logger) *MercadoLivreAdapter {
	return &MercadoLivreAdapter{
		BaseAdapter: NewBaseAdapter(config, logger),
	}
}

// GetStoreName returns the store name
func (m *MercadoLivreAdapter) GetStoreName() string {
	return mercadoLivreStoreName
}

// Search runs one product search request and maps its results
func (m *MercadoLivreAdapter) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	startTime := time.Now()
	m.logger.Infof("Searching %s for %q", mercadoLivreStoreName, query)

	endpoint := m.config.MercadoLivreURL + "?" + url.Values{"q": {query}}.Encode()

	var resp mercadoLivreResponse
	err := m.httpClient.GetJSON(ctx, endpoint, map[string]string{
		"Referer": "https://www.mercadolivre.com.br/",
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	matcher := m.filter.ForQuery(query)
	candidates := []types.Candidate{}
	for _, item := range resp.Results {
		link := ResolveURL("", item.Permalink)
		if item.Title == "" || link == "" || !pricing.IsValid(item.Price) {
			continue
		}
		if !matcher.Match(item.Title) {
			m.logger.Debugf("Skipping irrelevant item %q", item.Title)
			continue
		}

		image := strings.Replace(item.Thumbnail, "http://", "https://", 1)
		candidates = append(candidates, m.NewCandidate(item.Title, item.Price, link, image, mercadoLivreStoreName))
	}

	m.logger.Infof("%s found %d items (%d relevant) in %v", mercadoLivreStoreName, len(resp.Results), len(candidates), time.Since(startTime))
	return candidates, nil
}

// Suggest returns up to six query completions for prefix.
// Lookup failures are logged and yield an empty list.
func (m *MercadoLivreAdapter) Suggest(ctx context.Context, prefix string) []string {
	suggestions := []string{}
	if strings.TrimSpace(prefix) == "" {
		return suggestions
	}

	params := url.Values{
		"showFilters": {"true"},
		"limit":       {"6"},
		"api_version": {"2"},
		"q":           {prefix},
	}

	var resp autosuggestResponse
	err := m.httpClient.GetJSON(ctx, m.config.AutosuggestURL+"?"+params.Encode(), map[string]string{
		"Referer": "https://www.mercadolivre.com.br/",
	}, &resp)
	if err != nil {
		m.logger.Warnf("Autosuggest failed for %q: %v", prefix, err)
		return suggestions
	}

	for _, suggestion := range resp.SuggestedQueries {
		if suggestion.Query != "" {
			suggestions = append(suggestions, suggestion.Query)
		}
	}

	m.logger.Debugf("Autosuggest found %d suggestions for %q", len(suggestions), prefix)
	return suggestions
}
