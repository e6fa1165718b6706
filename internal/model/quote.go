package model

import "github.com/shopspring/decimal"

// Quote is the latest market data for a symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Open          decimal.Decimal `json:"open"`
	PreviousClose decimal.Decimal `json:"previous_close"`
}

// QuoteStatus tells callers why a quote lookup produced no quote.
type QuoteStatus string

const (
	QuoteStatusOK            QuoteStatus = "ok"
	QuoteStatusNotConfigured QuoteStatus = "not_configured"
	QuoteStatusUnavailable   QuoteStatus = "unavailable"
	QuoteStatusNotFound      QuoteStatus = "not_found"
)

// QuoteResult is the outcome of a single quote lookup. Quote is nil unless Status is ok.
type QuoteResult struct {
	Status QuoteStatus `json:"status"`
	Quote  *Quote      `json:"quote,omitempty"`
}

// Ok reports whether the lookup produced a usable quote.
func (r QuoteResult) Ok() bool {
	return r.Status == QuoteStatusOK && r.Quote != nil
}
