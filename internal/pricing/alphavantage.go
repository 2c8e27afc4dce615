package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/yahoo"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// ErrAPIRateLimited indicates Alpha Vantage answered with a rate-limit or
// information note instead of a quote.
var ErrAPIRateLimited = errors.New("alpha vantage rate limit or information note")

// AlphaVantageClient is the equities quote source used when an Alpha
// Vantage API key has been configured through settings. It satisfies the
// same quote surface as the Yahoo client so the resolver can swap between
// them.
type AlphaVantageClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageClient creates a client against the public endpoint.
func NewAlphaVantageClient(apiKey string) *AlphaVantageClient {
	return NewAlphaVantageClientWithBaseURL(apiKey, defaultAlphaVantageBaseURL)
}

// NewAlphaVantageClientWithBaseURL creates a client against a custom
// endpoint. Used by tests to point the client at a local mock server.
func NewAlphaVantageClientWithBaseURL(apiKey, baseURL string) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 8 * time.Second},
		baseURL:    baseURL,
	}
}

// LatestQuote fetches the GLOBAL_QUOTE price for a symbol.
func (c *AlphaVantageClient) LatestQuote(symbol string) (yahoo.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return yahoo.Quote{}, fmt.Errorf("empty symbol")
	}

	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return yahoo.Quote{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return yahoo.Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return yahoo.Quote{}, fmt.Errorf("alphavantage http %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return yahoo.Quote{}, err
	}
	if _, ok := raw["Note"]; ok {
		return yahoo.Quote{}, ErrAPIRateLimited
	}
	if _, ok := raw["Information"]; ok {
		return yahoo.Quote{}, ErrAPIRateLimited
	}

	gq, ok := raw["Global Quote"].(map[string]any)
	if !ok || len(gq) == 0 {
		return yahoo.Quote{}, fmt.Errorf("no quote returned for symbol %s", symbol)
	}

	priceStr, _ := gq["05. price"].(string)
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		return yahoo.Quote{}, fmt.Errorf("no usable price for symbol %s", symbol)
	}

	return yahoo.Quote{
		Symbol:   symbol,
		Price:    price,
		Currency: "USD",
	}, nil
}
