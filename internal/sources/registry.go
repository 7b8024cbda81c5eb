package sources

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/johnrirwin/newsfeed/internal/models"
)

// Registry holds the provider adapters known to one aggregator, in
// registration order.
type Registry struct {
	mu       sync.RWMutex
	adapters map[models.ProviderID]Adapter
	order    []models.ProviderID
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{
		adapters: make(map[models.ProviderID]Adapter),
	}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter, replacing any adapter with the same id. A
// replacement keeps the original position.
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := adapter.ID()
	if _, exists := r.adapters[id]; !exists {
		r.order = append(r.order, id)
	}
	r.adapters[id] = adapter
}

// Get returns the adapter for id, or nil.
func (r *Registry) Get(id models.ProviderID) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[id]
}

func (r *Registry) List() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		adapters = append(adapters, r.adapters[id])
	}
	return adapters
}

// IDs returns every registered provider id in registration order.
func (r *Registry) IDs() []models.ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.ProviderID{}, r.order...)
}

// Info returns id and display name for every registered adapter.
func (r *Registry) Info() []models.ProviderInfo {
	adapters := r.List()
	info := make([]models.ProviderInfo, 0, len(adapters))
	for _, a := range adapters {
		info = append(info, models.ProviderInfo{ID: a.ID(), Name: a.Name()})
	}
	return info
}

// Request asks one provider for one page.
type Request struct {
	Provider models.ProviderID
	Page     int
}

// Outcome is the settled result of one Request. Err is set when the
// provider is unknown or its adapter panicked; Result is then empty.
type Outcome struct {
	Provider models.ProviderID
	Page     int
	Result   models.AdapterResult
	Err      error
}

// Fetch runs every request concurrently and waits for all of them. A
// failing task never cancels the others. Outcomes follow request order.
func (r *Registry) Fetch(ctx context.Context, requests []Request, filters models.SearchFilters, pageSize int) []Outcome {
	outcomes := make([]Outcome, len(requests))

	var g errgroup.Group
	for i, req := range requests {
		i, req := i, req
		outcomes[i] =Outcome{Provider: req.Provider, Page: req.Page}
		adapter := r.Get(req.Provider)
		if adapter == nil {
			outcomes[i].Result = models.EmptyResult()
			outcomes[i].Err = fmt.Errorf("%w: %s", ErrUnknownProvider, req.Provider)
			continue
		}

		g.Go(func() error {
			result, err := fetchIsolated(ctx, adapter, filters, req.Page, pageSize)
			outcomes[i].Result = result
			outcomes[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func fetchIsolated(ctx context.Context, adapter Adapter, filters models.SearchFilters, page, pageSize int) (result models.AdapterResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = models.EmptyResult()
			err = fmt.Errorf("provider %s panicked: %v", adapter.ID(), rec)
		}
	}()
	return adapter.Fetch(ctx, filters, page, pageSize), nil
}

// FetchFromSources asks each provider for the same page and returns the
// successful results keyed by provider. Failed providers are omitted.
func (r *Registry) FetchFromSources(ctx context.Context, ids []models.ProviderID, filters models.SearchFilters, page, pageSize int) map[models.ProviderID]models.AdapterResult {
	requests := make([]Request, 0, len(ids))
	for _, id := range ids {
		requests = append(requests, Request{Provider: id, Page: page})
	}
	return Succeeded(r.Fetch(ctx, requests, filters, pageSize))
}

// Succeeded collects the results of outcomes without an error.
func Succeeded(outcomes []Outcome) map[models.ProviderID]models.AdapterResult {
	results := make(map[models.ProviderID]models.AdapterResult, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		results[o.Provider] = o.Result
	}
	return results
}
