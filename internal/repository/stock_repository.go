package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
)

// StockRepository provides read access to the stock catalog.
type StockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new StockRepository with the provided database connection.
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// GetStocks returns the whole catalog ordered by symbol.
func (r *StockRepository) GetStocks(ctx context.Context) ([]model.Stock, error) {
	query := `
        SELECT symbol, name, exchange
        FROM stocks
        ORDER BY symbol
    `
	return r.queryStocks(ctx, query)
}

// SearchStocks matches the query case-insensitively against symbol or name.
// Returns at most limit rows ordered by symbol.
func (r *StockRepository) SearchStocks(ctx context.Context, q string, limit int) ([]model.Stock, error) {
	query := `
        SELECT symbol, name, exchange
        FROM stocks
        WHERE symbol LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\'
        ORDER BY symbol
        LIMIT ?
    `
	pattern := "%" + escapeLike(strings.TrimSpace(q)) + "%"
	return r.queryStocks(ctx, query, pattern, pattern, limit)
}

// GetStock returns the catalog entry for symbol.
func (r *StockRepository) GetStock(ctx context.Context, symbol string) (model.Stock, error) {
	query := `
        SELECT symbol, name, exchange
        FROM stocks
        WHERE symbol = ?
    `
	var s model.Stock
	err := r.db.QueryRowContext(ctx, query, symbol).Scan(&s.Symbol, &s.Name, &s.Exchange)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stock{}, apperrors.ErrStockNotFound
	}
	if err != nil {
		return model.Stock{}, fmt.Errorf("failed to query stock: %w", err)
	}
	return s, nil
}

func (r *StockRepository) queryStocks(ctx context.Context, query string, args ...any) ([]model.Stock, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks table: %w", err)
	}
	defer rows.Close()

	stocks := []model.Stock{}
	for rows.Next() {
		var s model.Stock
		if err := rows.Scan(&s.Symbol, &s.Name, &s.Exchange); err != nil {
			return nil, fmt.Errorf("failed to scan stocks table results: %w", err)
		}
		stocks = append(stocks, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks table: %w", err)
	}

	return stocks, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
