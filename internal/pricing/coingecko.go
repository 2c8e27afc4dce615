// Package pricing resolves ticker symbols to live quotes: crypto symbols
// through a fixed CoinGecko id table first, everything else through an
// equities quote source. A symbol that resolves nowhere is reported as
// not found; the engine layer treats the resulting unknown price as
// "not yet known" rather than an error.
package pricing

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com"

// coinIDs is the fixed symbol→CoinGecko id table tried before any
// equities lookup. Symbols not listed here are assumed to be equities.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"BNB":   "binancecoin",
	"XLM":   "stellar",
	"NEAR":  "near",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"AAVE":  "aave",
	"INJ":   "injective-protocol",
}

// CoinGeckoClient fetches spot prices from the CoinGecko simple-price API.
type CoinGeckoClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewCoinGeckoClient creates a client against the public CoinGecko endpoint.
func NewCoinGeckoClient() *CoinGeckoClient {
	return NewCoinGeckoClientWithBaseURL(defaultCoinGeckoBaseURL)
}

// NewCoinGeckoClientWithBaseURL creates a client against a custom
// endpoint. Used by tests to point the client at a local mock server.
func NewCoinGeckoClientWithBaseURL(baseURL string) *CoinGeckoClient {
	return &CoinGeckoClient{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

// SimplePrice returns the USD price and market cap for a CoinGecko coin id.
func (c *CoinGeckoClient) SimplePrice(id string) (float64, float64, error) {
	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd&include_market_cap=true", c.baseURL, id)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("coingecko http %d", resp.StatusCode)
	}

	var payload map[string]struct {
		USD          float64 `json:"usd"`
		USDMarketCap float64 `json:"usd_market_cap"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, err
	}

	coin, ok := payload[id]
	if !ok || coin.USD <= 0 {
		return 0, 0, fmt.Errorf("no price returned for coin %s", id)
	}

	return coin.USD, coin.USDMarketCap, nil
}
