package service

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/metrics"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/pricing"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/repository"
)

// refreshConcurrency bounds how many symbol lookups run at once so a
// large holding set cannot hammer the quote providers.
const refreshConcurrency = 4

// PriceService handles price lookup and bulk refresh operations.
type PriceService struct {
	holdingRepo *repository.HoldingRepository
	resolver    *pricing.Resolver
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(holdingRepo *repository.HoldingRepository, resolver *pricing.Resolver) *PriceService {
	return &PriceService{
		holdingRepo: holdingRepo,
		resolver:    resolver,
	}
}

// Lookup resolves one symbol to its current quote.
func (s *PriceService) Lookup(symbol string) (pricing.Quote, error) {
	return s.resolver.Lookup(symbol)
}

// RefreshResult summarizes one bulk refresh pass.
type RefreshResult struct {
	Refreshed int      `json:"refreshed"`
	Failed    []string `json:"failed"`
}

// RefreshAll re-resolves every distinct held ticker and writes refreshed
// prices back to the stored holdings. Lookups run concurrently but
// bounded; a symbol that cannot be resolved is reported and skipped, it
// never fails the pass. The cash sentinel is excluded at the query level.
func (s *PriceService) RefreshAll(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	defer func() {
		metrics.PriceRefreshDuration.Observe(time.Since(start).Seconds())
	}()

	tickers, err := s.holdingRepo.GetDistinctTickers()
	if err != nil {
		return RefreshResult{}, err
	}

	var mu sync.Mutex
	result := RefreshResult{Failed: []string{}}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			quote, err := s.resolver.Lookup(ticker)
			if err != nil || quote.Price == nil {
				log.Printf("price refresh: no quote for %s: %v", ticker, err)
				mu.Lock()
				result.Failed = append(result.Failed, ticker)
				mu.Unlock()
				return nil
			}

			if err := s.holdingRepo.UpdatePriceForTicker(ticker, *quote.Price, string(quote.Class)); err != nil {
				return err
			}

			mu.Lock()
			result.Refreshed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RefreshResult{}, err
	}
	return result, nil
}
