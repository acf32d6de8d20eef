package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"price-hunter/internal/types"
	"price-hunter/pricing"
	"price-hunter/utils"

	"github.com/PuerkitoBio/goquery"
)

const (
	kabumStoreName       = "Kabum"
	kabumInputSelector   = "input#inputBusca"
	kabumResultsSelector = "article.productCard"
)

// PageRenderer runs an interactive search session and returns the rendered page
type PageRenderer interface {
	RunSearch(ctx context.Context, script utils.SearchScript) (*utils.RenderedPage, error)
}

// kabumCardSelectors locate result cards, newest markup first
var kabumCardSelectors = []string{
	"article.productCard",
	"article[class*='productCard']",
	"article",
}

var (
	kabumTitle = FieldChain{
		TextOf("span.nameCard"),
		TextOf("h3"),
		TextOf("[class*='nameCard']"),
		AttrOf("img", "alt"),
	}
	kabumLink = FieldChain{
		AttrOf("a.productLink", "href"),
		AttrOf("a[href]", "href"),
	}
	kabumImage = FieldChain{
		SkipInline(AttrOf("img.imageCard", "src")),
		SkipInline(AttrOf("img.imageCard", "data-src")),
		SkipInline(AttrOf("img", "src")),
		SkipInline(AttrOf("img", "data-src")),
	}
	kabumPrice = FieldChain{
		TextOf("span.priceCard"),
		TextOf("[class*='priceCard']"),
		TextOf("[class*='price']"),
	}
)

// KabumAdapter handles searches on kabum.com.br through a browser session:
// the store has no public API and serves results only to a rendered page.
type KabumAdapter struct {
	*BaseAdapter
	renderer PageRenderer
}

// NewKabumAdapter creates a new Kabum adapter
func NewKabumAdapter(config *types.Config, logger types.Logger) *KabumAdapter {
	base := NewBaseAdapter(config, logger)
	return &KabumAdapter{
		BaseAdapter: base,
		renderer:    base.browserClient,
	}
}

// WithRenderer replaces the browser session, mainly for tests
func (k *KabumAdapter) WithRenderer(renderer PageRenderer) *KabumAdapter {
	k.renderer = renderer
	return k
}

// GetStoreName returns the store name
func (k *KabumAdapter) GetStoreName() string {
	return kabumStoreName
}

// KabumSearchScript describes the browser session that searches query on the Kabum store front
func KabumSearchScript(config *types.Config, query string) utils.SearchScript {
	return utils.SearchScript{
		LandingURL:      strings.TrimSuffix(config.KabumURL, "/") + "/",
		InputSelector:   kabumInputSelector,
		ResultsSelector: kabumResultsSelector,
		Query:           query,
	}
}

// Search types query into the Kabum search box and extracts the offered products
func (k *KabumAdapter) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	if !k.config.UseHeadlessBrowser {
		return nil, errors.New("headless browser disabled")
	}

	startTime := time.Now()
	k.logger.Infof("Launching browser session for %s", kabumStoreName)

	page, err := k.renderer.RunSearch(ctx, KabumSearchScript(k.config, query))
	if err != nil {
		return nil, err
	}

	doc, err := k.ParseHTML(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	candidates := k.ExtractCandidates(doc, query)
	if len(candidates) == 0 {
		k.logger.Warnf("%s returned zero items, page title: %q", kabumStoreName, page.Title)
	}

	k.logger.Infof("%s found %d items in %v", kabumStoreName, len(candidates), time.Since(startTime))
	return candidates, nil
}

// CardFields holds the raw values read from one result card
type CardFields struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Link  string `json:"link"`
	Image string `json:"image"`
}

func readCard(card *goquery.Selection) CardFields {
	return CardFields{
		Title: kabumTitle.Extract(card),
		Price: kabumPrice.Extract(card),
		Link:  kabumLink.Extract(card),
		Image: kabumImage.Extract(card),
	}
}

// InspectCards returns the raw fields of at most limit cards, unfiltered.
// A limit of zero or less reads every card.
func InspectCards(doc *goquery.Document, limit int) []CardFields {
	cards := FindNodes(doc, kabumCardSelectors...)
	if limit > 0 && cards.Length() > limit {
		cards = cards.Slice(0, limit)
	}

	fields := []CardFields{}
	cards.Each(func(_ int, card *goquery.Selection) {
		fields = append(fields, readCard(card))
	})
	return fields
}

// ExtractCandidates reads every product card in doc.
// Cards without a title, price or link are skipped, as are unpriced or irrelevant ones.
func (k *KabumAdapter) ExtractCandidates(doc *goquery.Document, query string) []types.Candidate {
	matcher := k.filter.ForQuery(query)
	candidates := []types.Candidate{}

	FindNodes(doc, kabumCardSelectors...).Each(func(i int, card *goquery.Selection) {
		fields := readCard(card)
		if fields.Title == "" || fields.Price == "" || fields.Link == "" {
			k.logger.Debugf("Skipping card %d: missing title, price or link", i)
			return
		}

		if !matcher.Match(fields.Title) {
			k.logger.Debugf("Skipping irrelevant card %q", fields.Title)
			return
		}

		price, err := pricing.ParsePrice(fields.Price)
		if err != nil || !pricing.IsValid(price) {
			k.logger.Debugf("Skipping card %q with price %q", fields.Title, fields.Price)
			return
		}

		link := ResolveURL(k.config.KabumURL, fields.Link)
		if link == "" {
			return
		}

		image := ResolveURL(k.config.KabumURL, fields.Image)
		candidates = append(candidates, k.NewCandidate(fields.Title, price, link, image, kabumStoreName))
	})

	return candidates
}
