package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
)

// GoalRepository provides data access methods for the goals table.
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository creates a new GoalRepository with the provided database connection.
func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, icon,
        probability_score, ai_insight, created_at, updated_at`

// GetGoals returns the user's goals, newest first.
func (r *GoalRepository) GetGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	query := `
        SELECT ` + goalColumns + `
        FROM goals
        WHERE user_id = ?
        ORDER BY created_at DESC
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals table: %w", err)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals table: %w", err)
	}

	return goals, nil
}

// GetGoal returns a single goal of the user.
func (r *GoalRepository) GetGoal(ctx context.Context, userID, goalID string) (model.Goal, error) {
	query := `
        SELECT ` + goalColumns + `
        FROM goals
        WHERE id = ? AND user_id = ?
    `

	g, err := scanGoal(r.db.QueryRowContext(ctx, query, goalID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Goal{}, apperrors.ErrGoalNotFound
	}
	if err != nil {
		return model.Goal{}, err
	}
	return g, nil
}

// InsertGoal stores a new goal.
func (r *GoalRepository) InsertGoal(ctx context.Context, g model.Goal) error {
	query := `
        INSERT INTO goals (` + goalColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.UserID,
		g.Name,
		g.TargetAmount,
		g.CurrentAmount,
		formatDeadline(g),
		g.Icon,
		g.ProbabilityScore,
		g.AIInsight,
		FormatTime(g.CreatedAt),
		FormatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	return nil
}

// UpdateGoal overwrites the user-editable fields of a goal.
func (r *GoalRepository) UpdateGoal(ctx context.Context, g model.Goal) error {
	query := `
        UPDATE goals
        SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, icon = ?, updated_at = ?
        WHERE id = ? AND user_id = ?
    `

	result, err := r.db.ExecContext(ctx, query,
		g.Name,
		g.TargetAmount,
		g.CurrentAmount,
		formatDeadline(g),
		g.Icon,
		FormatTime(g.UpdatedAt),
		g.ID,
		g.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	return expectOneRow(result, apperrors.ErrGoalNotFound)
}

// UpdateGoalAnalysis stores the probability score and insight of a goal.
func (r *GoalRepository) UpdateGoalAnalysis(ctx context.Context, goalID string, score int, insight string) error {
	query := `
        UPDATE goals
        SET probability_score = ?, ai_insight = ?
        WHERE id = ?
    `

	result, err := r.db.ExecContext(ctx, query, score, insight, goalID)
	if err != nil {
		return fmt.Errorf("failed to update goal analysis: %w", err)
	}

	return expectOneRow(result, apperrors.ErrGoalNotFound)
}

// DeleteGoal removes a goal of the user.
func (r *GoalRepository) DeleteGoal(ctx context.Context, userID, goalID string) error {
	query := `DELETE FROM goals WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	return expectOneRow(result, apperrors.ErrGoalNotFound)
}

func formatDeadline(g model.Goal) any {
	if g.Deadline == nil {
		return nil
	}
	return g.Deadline.UTC().Format(dateLayout)
}

func scanGoal(row rowScanner) (model.Goal, error) {
	var g model.Goal
	var deadline, insight sql.NullString
	var score sql.NullInt64
	var createdStr, updatedStr string

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Name,
		&g.TargetAmount,
		&g.CurrentAmount,
		&deadline,
		&g.Icon,
		&score,
		&insight,
		&createdStr,
		&updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Goal{}, err
	}
	if err != nil {
		return model.Goal{}, fmt.Errorf("failed to scan goals table results: %w", err)
	}

	if deadline.Valid && deadline.String != "" {
		d, err := ParseTime(deadline.String)
		if err != nil {
			return model.Goal{}, err
		}
		g.Deadline = &d
	}
	if score.Valid {
		s := int(score.Int64)
		g.ProbabilityScore = &s
	}
	if insight.Valid {
		g.AIInsight = &insight.String
	}

	g.CreatedAt, err = ParseTime(createdStr)
	if err != nil {
		return model.Goal{}, err
	}
	g.UpdatedAt, err = ParseTime(updatedStr)
	if err != nil {
		return model.Goal{}, err
	}

	return g, nil
}
