package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType classifies a holding for allocation reporting.
type AssetType string

const (
	AssetTypeStock AssetType = "stock"
	AssetTypeOther AssetType = "other"
)

// AssetTypes lists every accepted asset type in display order.
var AssetTypes = []AssetType{
	AssetTypeStock,
	AssetTypeOther,
}

// IsValid reports whether the asset type is one of AssetTypes.
func (a AssetType) IsValid() bool {
	for _, t := range AssetTypes {
		if a == t {
			return true
		}
	}
	return false
}

// Holding represents a user's position in a single symbol.
//
// The derived fields (CurrentPrice, ChangePercent, MarketValue, ProfitLoss) are
// only populated after a successful quote lookup. A holding whose lookup failed
// keeps them nil and is serialized without those keys.
type Holding struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Shares    decimal.Decimal `json:"shares"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	AssetType AssetType       `json:"asset_type"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
	MarketValue   *decimal.Decimal `json:"market_value,omitempty"`
	ProfitLoss    *decimal.Decimal `json:"profit_loss,omitempty"`
}

// CostBasis returns shares * avg_cost.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Shares.Mul(h.AvgCost)
}

// IsPriced reports whether the holding carries quote-derived values.
func (h Holding) IsPriced() bool {
	return h.CurrentPrice != nil && h.MarketValue != nil
}
