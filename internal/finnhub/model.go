package finnhub

import "github.com/shopspring/decimal"

// quoteResponse maps the /quote endpoint.
// Unknown symbols come back with c=0 and null change fields, which decode to zero.
type quoteResponse struct {
	Current       decimal.Decimal `json:"c"`
	Change        decimal.Decimal `json:"d"`
	ChangePercent decimal.Decimal `json:"dp"`
	High          decimal.Decimal `json:"h"`
	Low           decimal.Decimal `json:"l"`
	Open          decimal.Decimal `json:"o"`
	PreviousClose decimal.Decimal `json:"pc"`
	Timestamp     int64           `json:"t"`
}

// newsResponse maps one element of the /news endpoint.
type newsResponse struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}
