package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
)

// HoldingRepository provides data access methods for the holdings table.
// Every query is scoped by user id; a holding owned by another user behaves as missing.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

const holdingColumns = `id, user_id, symbol, name, shares, avg_cost, asset_type, created_at, updated_at`

// GetHoldings returns the user's holdings, newest first.
// Returns an empty slice if the user has none.
func (r *HoldingRepository) GetHoldings(ctx context.Context, userID string) ([]model.Holding, error) {
	query := `
        SELECT ` + holdingColumns + `
        FROM holdings
        WHERE user_id = ?
        ORDER BY created_at DESC
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings table: %w", err)
	}

	return holdings, nil
}

// GetHolding returns a single holding of the user.
func (r *HoldingRepository) GetHolding(ctx context.Context, userID, holdingID string) (model.Holding, error) {
	query := `
        SELECT ` + holdingColumns + `
        FROM holdings
        WHERE id = ? AND user_id = ?
    `

	h, err := scanHolding(r.db.QueryRowContext(ctx, query, holdingID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, err
	}
	return h, nil
}

// InsertHolding stores a new holding.
// Returns apperrors.ErrDuplicateHolding when the user already holds the symbol.
func (r *HoldingRepository) InsertHolding(ctx context.Context, h model.Holding) error {
	query := `
        INSERT INTO holdings (` + holdingColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query,
		h.ID,
		h.UserID,
		h.Symbol,
		h.Name,
		h.Shares,
		h.AvgCost,
		string(h.AssetType),
		FormatTime(h.CreatedAt),
		FormatTime(h.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateHolding
	}
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	return nil
}

// UpdateHolding overwrites shares and average cost of an existing holding.
func (r *HoldingRepository) UpdateHolding(ctx context.Context, h model.Holding) error {
	query := `
        UPDATE holdings
        SET shares = ?, avg_cost = ?, updated_at = ?
        WHERE id = ? AND user_id = ?
    `

	result, err := r.db.ExecContext(ctx, query,
		h.Shares,
		h.AvgCost,
		FormatTime(h.UpdatedAt),
		h.ID,
		h.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	return expectOneRow(result, apperrors.ErrHoldingNotFound)
}

// DeleteHolding removes a holding of the user.
func (r *HoldingRepository) DeleteHolding(ctx context.Context, userID, holdingID string) error {
	query := `DELETE FROM holdings WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, holdingID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	return expectOneRow(result, apperrors.ErrHoldingNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHolding(row rowScanner) (model.Holding, error) {
	var h model.Holding
	var assetType, createdStr, updatedStr string

	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Symbol,
		&h.Name,
		&h.Shares,
		&h.AvgCost,
		&assetType,
		&createdStr,
		&updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Holding{}, err
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to scan holdings table results: %w", err)
	}

	h.AssetType = model.AssetType(assetType)

	h.CreatedAt, err = ParseTime(createdStr)
	if err != nil {
		return model.Holding{}, err
	}
	h.UpdatedAt, err = ParseTime(updatedStr)
	if err != nil {
		return model.Holding{}, err
	}

	return h, nil
}

// expectOneRow maps a statement that touched no rows to notFound.
func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
