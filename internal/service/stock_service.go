package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
)

// StockSearchLimit caps the number of catalog matches returned for a query.
const StockSearchLimit = 10

// StockService handles the symbol catalog.
type StockService struct {
	stockRepo *repository.StockRepository
}

// NewStockService creates a new StockService.
func NewStockService(stockRepo *repository.StockRepository) *StockService {
	return &StockService{stockRepo: stockRepo}
}

// SearchStocks returns catalog entries whose symbol or name contains q.
// An empty query returns the whole catalog ordered by symbol.
func (s *StockService) SearchStocks(ctx context.Context, q string) ([]model.Stock, error) {
	var (
		stocks []model.Stock
		err    error
	)

	if q = strings.TrimSpace(q); q == "" {
		stocks, err = s.stockRepo.GetStocks(ctx)
	} else {
		stocks, err = s.stockRepo.SearchStocks(ctx, q, StockSearchLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveStocks, err)
	}

	return stocks, nil
}
