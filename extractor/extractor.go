package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"price-hunter/adapters"
	"price-hunter/internal/types"
	"price-hunter/utils"
)

// Source names accepted in a selection, in dispatch order
const (
	SourceKabum        = "kabum"
	SourceGoogle       = "google"
	SourceMercadoLivre = "mercadolivre"
)

// Suggester completes partial search queries
type Suggester interface {
	Suggest(ctx context.Context, prefix string) []string
}

type requestIDKey struct{}

// Extractor fans a search out to the selected stores and picks the cheapest offer
type Extractor struct {
	config    *types.Config
	logger    types.Logger
	order     []string
	adapters  map[string]types.StoreAdapter
	breakers  map[string]*utils.Breaker
	suggester Suggester
}

// NewExtractor creates a new extractor with every supported store registered
func NewExtractor(config *types.Config, logger types.Logger) *Extractor {
	e := newExtractor(config, logger)

	mercadoLivre := adapters.NewMercadoLivreAdapter(config, logger)
	e.Register(SourceKabum, adapters.NewKabumAdapter(config, logger))
	e.Register(SourceGoogle, adapters.NewSerperAdapter(config, logger))
	e.Register(SourceMercadoLivre, mercadoLivre)
	e.suggester = mercadoLivre

	return e
}

func newExtractor(config *types.Config, logger types.Logger) *Extractor {
	return &Extractor{
		config:   config,
		logger:   logger,
		adapters: make(map[string]types.StoreAdapter),
		breakers: make(map[string]*utils.Breaker),
	}
}

// Register adds adapter under name. Stores are dispatched in registration order.
// A breaker is attached only when Config.BreakerFailures is set.
func (e *Extractor) Register(name string, adapter types.StoreAdapter) {
	if _, exists := e.adapters[name]; !exists {
		e.order = append(e.order, name)
	}
	e.adapters[name] = adapter
	if e.config.BreakerFailures > 0 {
		e.breakers[name] = utils.NewBreaker(name, e.config.BreakerFailures, e.config.BreakerCooldown, e.logger)
	}
}

// Sources returns the registered store names in dispatch order
func (e *Extractor) Sources() []string {
	return append([]string(nil), e.order...)
}

// SearchProducts validates the request and returns the cheapest relevant offer
// among the stores enabled in selection.
func (e *Extractor) SearchProducts(ctx context.Context, query string, selection types.SourceSelection) (*types.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	sources := e.resolveSources(selection)
	if len(sources) == 0 {
		return nil, ErrNoSourceSelected
	}

	requestID := uuid.NewString()
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	startTime := time.Now()
	e.logger.Infof("[%s] Searching %q in %s", requestID, query, strings.Join(sources, ", "))

	winner, err := e.Aggregate(ctx, sources, query)
	if err != nil {
		e.logger.Warnf("[%s] Search failed after %v: %v", requestID, time.Since(startTime), err)
		return nil, err
	}

	e.logger.Infof("[%s] Winner: %s (%s) from %s in %v", requestID, winner.Title, winner.FormattedPrice, winner.Store, time.Since(startTime))
	return winner, nil
}

// Aggregate queries sources concurrently and returns the lowest priced candidate.
// Equal prices keep the order of sources.
func (e *Extractor) Aggregate(ctx context.Context, sources []string, query string) (*types.Candidate, error) {
	if len(sources) == 0 {
		return nil, ErrNoSourceSelected
	}
	return pickWinner(e.Collect(ctx, sources, query))
}

// Collect searches every source concurrently and waits for all of them.
// Results are returned in the order of sources; failures are recorded, never returned.
func (e *Extractor) Collect(ctx context.Context, sources []string, query string) []types.StoreResult {
	results := make([]types.StoreResult, len(sources))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, name := range sources {
		g.Go(func() error {
			results[i] = e.searchStore(groupCtx, name, query)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// SearchToJSON runs SearchProducts and saves the winner to filename
func (e *Extractor) SearchToJSON(ctx context.Context, query string, selection types.SourceSelection, filename string) (*types.Candidate, error) {
	winner, err := e.SearchProducts(ctx, query, selection)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.MarshalIndent(winner, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal winner to JSON: %w", err)
	}

	if err := writeToFile(filename, jsonData); err != nil {
		return nil, fmt.Errorf("failed to write winner to file: %w", err)
	}

	e.logger.Infof("Winner saved to %s", filename)
	return winner, nil
}

// Suggest returns query completions, or an empty list when no suggester is configured
func (e *Extractor) Suggest(ctx context.Context, prefix string) []string {
	if e.suggester == nil {
		return []string{}
	}
	return e.suggester.Suggest(ctx, prefix)
}

// Close cleans up resources
func (e *Extractor) Close() {
	for _, adapter := range e.adapters {
		adapter.Close()
	}
}

func (e *Extractor) resolveSources(selection types.SourceSelection) []string {
	for name, enabled := range selection {
		if _, known := e.adapters[name]; enabled && !known {
			e.logger.Warnf("Ignoring unknown store %q", name)
		}
	}
	return selection.Enabled(e.order)
}

func (e *Extractor) searchStore(ctx context.Context, name, query string) types.StoreResult {
	startTime := time.Now()
	requestID, _ := ctx.Value(requestIDKey{}).(string)

	adapter, exists := e.adapters[name]
	if !exists {
		return types.StoreResult{
			StoreName:  name,
			Candidates: []types.Candidate{},
			Error:      (&SourceError{Store: name, Err: errors.New("no adapter found")}).Error(),
		}
	}

	storeCtx := ctx
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	result := types.StoreResult{
		StoreName:  adapter.GetStoreName(),
		Candidates: []types.Candidate{},
	}

	candidates, err := e.runAdapter(storeCtx, name, adapter, query)
	result.Duration = time.Since(startTime)
	if err != nil {
		sourceErr := &SourceError{Store: adapter.GetStoreName(), Err: err}
		result.Error = sourceErr.Error()
		e.logger.Warnf("[%s] %v", requestID, sourceErr)
		return result
	}

	if candidates != nil {
		result.Candidates = candidates
	}
	e.logger.Infof("[%s] %s returned %d candidates in %v", requestID, result.StoreName, len(result.Candidates), result.Duration)
	return result
}

// runAdapter calls the adapter through its breaker, turning a panic into an error
func (e *Extractor) runAdapter(ctx context.Context, name string, adapter types.StoreAdapter, query string) (candidates []types.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("Panic in %s adapter: %v\n%s", name, r, debug.Stack())
			candidates, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	breaker, exists := e.breakers[name]
	if !exists {
		return adapter.Search(ctx, query)
	}

	value, err := breaker.Execute(func() (interface{}, error) {
		return adapter.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	candidates, _ = value.([]types.Candidate)
	return candidates, nil
}

// pickWinner merges results in order and returns the cheapest candidate
func pickWinner(results []types.StoreResult) (*types.Candidate, error) {
	var all []types.Candidate
	var failures []string

	for _, result := range results {
		if result.Failed() {
			failures = append(failures, result.Error)
			continue
		}
		all = append(all, result.Candidates...)
	}

	if len(all) == 0 {
		if len(failures) > 0 && len(failures) == len(results) {
			return nil, &AllSourcesFailedError{Messages: failures}
		}
		return nil, ErrNoResults
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Price < all[j].Price
	})

	winner := all[0]
	return &winner, nil
}

// writeToFile writes data to a file
func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
