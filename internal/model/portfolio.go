package model

import "github.com/shopspring/decimal"

// PortfolioSummary aggregates a set of holdings after pricing.
// Only priced holdings contribute to the totals; UnpricedHoldings counts the rest
// so callers can tell a partial valuation from a complete one.
type PortfolioSummary struct {
	TotalValue       decimal.Decimal   `json:"total_value"`
	TotalCost        decimal.Decimal   `json:"total_cost"`
	TotalProfitLoss  decimal.Decimal   `json:"total_profit_loss"`
	ReturnPercent    decimal.Decimal   `json:"return_percent"`
	PricedHoldings   int               `json:"priced_holdings"`
	UnpricedHoldings int               `json:"unpriced_holdings"`
	Allocation       []AllocationSlice `json:"allocation"`
}

// AllocationSlice is the market value held in one asset type.
type AllocationSlice struct {
	AssetType AssetType       `json:"asset_type"`
	Value     decimal.Decimal `json:"value"`
	Percent   decimal.Decimal `json:"percent"`
}
