package request

import "github.com/shopspring/decimal"

// CreateHoldingRequest represents the request body for adding a holding.
// Name is looked up in the stock catalog when omitted.
type CreateHoldingRequest struct {
	Symbol    string          `json:"symbol" validate:"required,max=10"`
	Name      string          `json:"name" validate:"max=255"`
	Shares    decimal.Decimal `json:"shares"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	AssetType string          `json:"asset_type" validate:"omitempty,asset_type"`
}

// UpdateHoldingRequest represents the request body for editing a holding
type UpdateHoldingRequest struct {
	Shares  decimal.Decimal `json:"shares"`
	AvgCost decimal.Decimal `json:"avg_cost"`
}
