package model

// Holding is one stored position of a portfolio node. Price is nil while
// no market price has been resolved yet; the engine tolerates that state
// and treats dependent actions as inactive.
type Holding struct {
	ID         string   `json:"id"`
	NodeID     string   `json:"nodeId"`
	Ticker     string   `json:"ticker"`
	Amount     float64  `json:"amount"`
	Price      *float64 `json:"price"`
	AssetClass string   `json:"assetClass"`
}
