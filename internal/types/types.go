package types

import (
	"context"
	"time"
)

// Candidate represents one normalized product offer found by a single store
type Candidate struct {
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formattedPrice"`
	Image          string  `json:"image"`
	Link           string  `json:"link"`
	Store          string  `json:"store"`
}

// StoreResult represents the outcome of querying a single store.
// Error is set when the store failed; Candidates is then empty.
type StoreResult struct {
	StoreName  string        `json:"store_name"`
	Candidates []Candidate   `json:"candidates"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Failed reports whether the store could not be queried
func (r StoreResult) Failed() bool {
	return r.Error != ""
}

// SourceSelection maps a store name to whether it is enabled for a search
type SourceSelection map[string]bool

// Enabled returns the names from order that are switched on, preserving order
func (s SourceSelection) Enabled(order []string) []string {
	var names []string
	for _, name := range order {
		if s[name] {
			names = append(names, name)
		}
	}
	return names
}

// Config holds the configuration for the price finder
type Config struct {
	RequestDelay       time.Duration
	Timeout            time.Duration // overall budget for one store
	NavigationTimeout  time.Duration
	SelectorTimeout    time.Duration
	ResultsTimeout     time.Duration
	LandingPause       time.Duration
	TypingDelay        time.Duration
	UseHeadlessBrowser bool // false disables browser-driven stores
	Headless           bool
	BlockAssets        bool
	UserAgent          string
	AcceptLanguage     string

	ProxyServer   string
	ProxyUsername string
	ProxyPassword string

	SerperAPIKey    string
	KabumURL        string
	SerperURL       string
	MercadoLivreURL string
	AutosuggestURL  string
	Country         string
	Language        string

	BreakerFailures uint32 // 0 keeps the breaker off; every search then reaches every store
	BreakerCooldown time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       200 * time.Millisecond,
		Timeout:            90 * time.Second,
		NavigationTimeout:  60 * time.Second,
		SelectorTimeout:    15 * time.Second,
		ResultsTimeout:     10 * time.Second,
		LandingPause:       500 * time.Millisecond,
		TypingDelay:        50 * time.Millisecond,
		UseHeadlessBrowser: true,
		Headless:           true,
		BlockAssets:        true,
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage:     "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
		KabumURL:           "https://www.kabum.com.br",
		SerperURL:          "https://google.serper.dev/shopping",
		MercadoLivreURL:    "https://api.mercadolibre.com/sites/MLB/search",
		AutosuggestURL:     "https://http2.mlstatic.com/resources/sites/MLB/autosuggest",
		Country:            "br",
		Language:           "pt-br",
		BreakerFailures:    0,
		BreakerCooldown:    2 * time.Minute,
	}
}

// StoreAdapter defines the interface for store-specific search logic
type StoreAdapter interface {
	// GetStoreName returns the display name of the store
	GetStoreName() string

	// Search returns the relevant, priced offers the store lists for query
	Search(ctx context.Context, query string) ([]Candidate, error)

	// Close releases clients held by the adapter
	Close()
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
