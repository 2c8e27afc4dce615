package model

import "encoding/json"

// ActionParams is the stored parameter record of one action node: the
// node's kind plus a kind-shaped JSON payload. All six action kinds live
// in this single store keyed by node id; there are no parallel per-kind
// maps.
type ActionParams struct {
	NodeID  string          `json:"nodeId"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// RotateParams is the payload for a rotate node.
type RotateParams struct {
	FromTicker   string   `json:"fromTicker"`
	SellAmount   float64  `json:"sellAmount"`
	ToTicker     string   `json:"toTicker"`
	ToPrice      *float64 `json:"toPrice"`
	ToAssetClass string   `json:"toAssetClass"`
}

// SellParams is the payload for a sell node.
type SellParams struct {
	FromTicker string  `json:"fromTicker"`
	SellAmount float64 `json:"sellAmount"`
}

// BuyParams is the payload for a buy node.
type BuyParams struct {
	CashAmount   float64  `json:"cashAmount"`
	ToTicker     string   `json:"toTicker"`
	ToPrice      *float64 `json:"toPrice"`
	ToAssetClass string   `json:"toAssetClass"`
}

// PriceTargetParams is the payload for a price-target node.
type PriceTargetParams struct {
	Ticker      string   `json:"ticker"`
	TargetPrice *float64 `json:"targetPrice"`
}

// AllInParams is the payload for an all-in node.
type AllInParams struct {
	ToTicker     string   `json:"toTicker"`
	ToPrice      *float64 `json:"toPrice"`
	ToAssetClass string   `json:"toAssetClass"`
}

// YieldParams is the payload for a yield node.
type YieldParams struct {
	Ticker        string  `json:"ticker"`
	AnnualRatePct float64 `json:"annualRatePct"`
	Duration      float64 `json:"duration"`
	DurationUnit  string  `json:"durationUnit"`
	Mode          string  `json:"mode"`
}
