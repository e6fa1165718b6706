package service

import (
	"context"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

// QuoteProvider looks up the latest quote of a symbol.
// Implementations never fail; the outcome is carried by the result status.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) model.QuoteResult
}

// NewsProvider fetches one page of market news.
type NewsProvider interface {
	HasAPIKey() bool
	GetNews(ctx context.Context, category model.NewsCategory, minID int64) ([]model.NewsItem, error)
}

// Advisor generates answers with a language model.
type Advisor interface {
	Configured() bool
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}
