package pricing

import (
	"fmt"
	"strings"
	"sync"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/engine"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/metrics"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/yahoo"
)

// Quote is the result of a symbol lookup. Price and MarketCap are nil
// when unknown; callers must treat a nil price as "not yet known", never
// as a fatal condition.
type Quote struct {
	Price     *float64          `json:"price"`
	MarketCap *float64          `json:"marketCap"`
	Class     engine.AssetClass `json:"assetClass"`
}

// EquityQuoter is the quote surface of the equities fallback source. Both
// the Yahoo client and the Alpha Vantage client satisfy it.
type EquityQuoter interface {
	LatestQuote(symbol string) (yahoo.Quote, error)
}

// Resolver routes a symbol lookup: the fixed crypto table first, then the
// configured equities source. The equities source can be swapped at
// runtime when an API key is configured or cleared through settings.
type Resolver struct {
	crypto *CoinGeckoClient

	mu       sync.RWMutex
	equities EquityQuoter
}

// NewResolver creates a resolver over the given sources.
func NewResolver(crypto *CoinGeckoClient, equities EquityQuoter) *Resolver {
	return &Resolver{crypto: crypto, equities: equities}
}

// SetEquities swaps the equities quote source.
func (r *Resolver) SetEquities(q EquityQuoter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.equities = q
}

// Lookup resolves one symbol to a quote. The cash sentinel USD always
// resolves to price 1. Symbols in the crypto table are quoted through
// CoinGecko; everything else, and crypto symbols whose lookup failed,
// falls through to the equities source.
func (r *Resolver) Lookup(symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{Class: engine.AssetUnknown}, apperrors.ErrInvalidTicker
	}
	if symbol == engine.CashTicker {
		one := 1.0
		return Quote{Price: &one, Class: engine.AssetCash}, nil
	}

	if id, ok := coinIDs[symbol]; ok {
		price, marketCap, err := r.crypto.SimplePrice(id)
		if err == nil {
			metrics.PriceLookupsTotal.WithLabelValues("coingecko").Inc()
			q := Quote{Price: &price, Class: engine.AssetCrypto}
			if marketCap > 0 {
				q.MarketCap = &marketCap
			}
			return q, nil
		}
		metrics.PriceLookupFailuresTotal.WithLabelValues("coingecko").Inc()
	}

	r.mu.RLock()
	equities := r.equities
	r.mu.RUnlock()

	quote, err := equities.LatestQuote(symbol)
	if err != nil {
		metrics.PriceLookupFailuresTotal.WithLabelValues("equities").Inc()
		return Quote{Class: engine.AssetUnknown}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	metrics.PriceLookupsTotal.WithLabelValues("equities").Inc()
	q := Quote{Price: &quote.Price, Class: engine.AssetStock}
	if quote.MarketCap > 0 {
		q.MarketCap = &quote.MarketCap
	}
	return q, nil
}
