// Package yahoo implements the equities quote client used as the
// fallback price source for symbols the crypto table cannot resolve.
package yahoo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client is the quote lookup surface the pricing resolver depends on.
// Tests substitute a mock implementation.
type Client interface {
	LatestQuote(symbol string) (Quote, error)
}

// FinanceClient fetches quotes from the Yahoo Finance chart API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a client against the public Yahoo endpoint.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithBaseURL(defaultBaseURL)
}

// NewFinanceClientWithBaseURL creates a client against a custom endpoint.
// Used by tests to point the client at a local mock server.
func NewFinanceClientWithBaseURL(baseURL string) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

// LatestQuote fetches the last five trading days of a symbol and returns
// the most recent closing price. Five days rather than one so a weekend
// or holiday still yields a close.
func (c *FinanceClient) LatestQuote(symbol string) (Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, symbol)
	result, err := c.queryYahoo(url)
	if err != nil {
		return Quote{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 || len(r.Indicators.Quote[0].Close) == 0 {
		return Quote{}, fmt.Errorf("no close prices returned for symbol %s", symbol)
	}

	closes := r.Indicators.Quote[0].Close
	var price float64
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] > 0 {
			price = closes[i]
			break
		}
	}
	if price == 0 {
		return Quote{}, fmt.Errorf("no usable close price for symbol %s", symbol)
	}

	return Quote{
		Symbol:    r.Meta.Symbol,
		Price:     price,
		Currency:  r.Meta.Currency,
		MarketCap: r.Meta.MarketCap,
		LongName:  r.Meta.LongName,
	}, nil
}

// queryYahoo executes one request against the chart API. It sets a
// browser User-Agent because the API rejects default Go clients, parses
// the response, and surfaces Yahoo's own error field as a Go error.
func (c *FinanceClient) queryYahoo(url string) (Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", *response.Chart.Error)
	}

	return response, nil
}
