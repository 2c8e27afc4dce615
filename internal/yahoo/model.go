package yahoo

// Response represents the raw JSON response structure from the Yahoo
// Finance chart API: an array of results (typically one) with symbol
// metadata, timestamps, and parallel price arrays, plus an optional
// API-level error message.
type Response struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency         string  `json:"currency"`
				Symbol           string  `json:"symbol"`
				ExchangeName     string  `json:"exchangeName"`
				FullExchangeName string  `json:"fullExchangeName"`
				LongName         string  `json:"longName"`
				Shortname        string  `json:"shortName"`
				MarketCap        float64 `json:"marketCap"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// Quote is the parsed result of a symbol lookup: the most recent closing
// price plus the metadata needed for display and classification.
type Quote struct {
	Symbol    string
	Price     float64
	Currency  string
	MarketCap float64
	LongName  string
}
