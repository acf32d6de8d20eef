package adapters

import (
	"net/url"
	"strings"

	"price-hunter/internal/types"
	"price-hunter/pricing"
	"price-hunter/relevance"
	"price-hunter/utils"

	"github.com/PuerkitoBio/goquery"
)

// BaseAdapter provides common functionality for store adapters.
// Store-specific adapters embed it and add their own fetching and field mapping.
type BaseAdapter struct {
	config        *types.Config        // Configuration settings (timeouts, browser settings, keys)
	logger        types.Logger         // Structured logging interface
	httpClient    *utils.HTTPClient    // HTTP client for JSON APIs
	browserClient *utils.BrowserClient // Headless browser client for interactive sessions
	filter        *relevance.Filter    // Title relevance gate
}

// NewBaseAdapter creates a new base adapter with initialized HTTP and browser clients
func NewBaseAdapter(config *types.Config, logger types.Logger) *BaseAdapter {
	return &BaseAdapter{
		config:        config,
		logger:        logger,
		httpClient:    utils.NewHTTPClient(config, logger),
		browserClient: utils.NewBrowserClient(config, logger),
		filter:        relevance.DefaultFilter(),
	}
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// NewCandidate builds a candidate, formatting the price for display
func (b *BaseAdapter) NewCandidate(title string, price float64, link, image, store string) types.Candidate {
	return types.Candidate{
		Title:          strings.TrimSpace(title),
		Price:          price,
		FormattedPrice: pricing.FormatBRL(price),
		Link:           link,
		Image:          image,
		Store:          store,
	}
}

// Close cleans up resources
func (b *BaseAdapter) Close() {
	if b.httpClient != nil {
		b.httpClient.Close()
	}
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

// FieldExtractor reads one field from a result node; it returns "" when it finds nothing
type FieldExtractor func(node *goquery.Selection) string

// FieldChain is an ordered list of extractors for one field.
// Store markup drifts between releases, so each field keeps its older selectors as fallbacks.
type FieldChain []FieldExtractor

// Extract returns the first non-empty value produced by the chain
func (c FieldChain) Extract(node *goquery.Selection) string {
	for _, extract := range c {
		if value := extract(node); value != "" {
			return value
		}
	}
	return ""
}

// TextOf extracts the trimmed text of the first element matching selector
func TextOf(selector string) FieldExtractor {
	return func(node *goquery.Selection) string {
		return collapseSpaces(node.Find(selector).First().Text())
	}
}

// AttrOf extracts attribute attr of the first element matching selector.
// An empty selector reads the attribute from the node itself.
func AttrOf(selector, attr string) FieldExtractor {
	return func(node *goquery.Selection) string {
		target := node
		if selector != "" {
			target = node.Find(selector).First()
		}
		value, exists := target.Attr(attr)
		if !exists {
			return ""
		}
		return strings.TrimSpace(value)
	}
}

// SkipInline drops inline data: values so a lazy-load placeholder does not hide a later fallback
func SkipInline(extract FieldExtractor) FieldExtractor {
	return func(node *goquery.Selection) string {
		value := extract(node)
		if strings.HasPrefix(strings.ToLower(value), "data:") {
			return ""
		}
		return value
	}
}

// FindNodes returns the matches of the first selector that matches anything
func FindNodes(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if nodes := doc.Find(selector); nodes.Length() > 0 {
			return nodes
		}
	}
	return doc.Selection.Slice(0, 0)
}

// ResolveURL turns href into an absolute http(s) URL relative to base.
// It returns "" when href cannot be resolved.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "data:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
