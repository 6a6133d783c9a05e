package models

// PriceEntry is one priced holding in a valuation.
type PriceEntry struct {
	Ticker       string  `json:"ticker"`
	CurrentPrice float64 `json:"currentPrice"`
	Quantity     float64 `json:"quantity"`
	TotalValue   float64 `json:"totalValue"`
}

// Valuation holds one entry per holding, in store listing order.
type Valuation struct {
	Prices              []PriceEntry `json:"prices"`
	TotalPortfolioValue float64      `json:"totalPortfolioValue"`
}
