package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/pricing"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/yahoo"
)

// StaticQuoter is a canned equities quote source for testing. It
// satisfies pricing.EquityQuoter without any network access.
type StaticQuoter struct {
	// Quotes maps symbol to price; symbols not listed return an error.
	Quotes map[string]float64
	// Err, when set, is returned for every lookup.
	Err error
	// LookupCount tracks how many lookups were made.
	LookupCount int
}

// LatestQuote returns the canned quote for a symbol.
func (q *StaticQuoter) LatestQuote(symbol string) (yahoo.Quote, error) {
	q.LookupCount++
	if q.Err != nil {
		return yahoo.Quote{}, q.Err
	}
	price, ok := q.Quotes[symbol]
	if !ok {
		return yahoo.Quote{}, fmt.Errorf("no canned quote for %s", symbol)
	}
	return yahoo.Quote{Symbol: symbol, Price: price, Currency: "USD"}, nil
}

// NewCoinGeckoServer starts a mock CoinGecko simple-price server serving
// the given coin-id to price table. The server is shut down when the
// test completes.
func NewCoinGeckoServer(t *testing.T, prices map[string]float64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("ids")
		price, ok := prices[id]
		if !ok {
			http.NotFound(w, r)
			return
		}

		payload := map[string]map[string]float64{
			id: {
				"usd":            price,
				"usd_market_cap": price * 1e6,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("Failed to encode mock coingecko response: %v", err)
		}
	}))

	t.Cleanup(server.Close)
	return server
}

// NewTestResolver builds a pricing resolver whose crypto lookups hit a
// mock CoinGecko server (coin ids in cryptoPrices) and whose equities
// lookups hit a StaticQuoter (symbols in equityPrices).
func NewTestResolver(t *testing.T, cryptoPrices, equityPrices map[string]float64) *pricing.Resolver {
	t.Helper()

	server := NewCoinGeckoServer(t, cryptoPrices)
	crypto := pricing.NewCoinGeckoClientWithBaseURL(server.URL)
	return pricing.NewResolver(crypto, &StaticQuoter{Quotes: equityPrices})
}
