package request

import "github.com/shopspring/decimal"

// CreateGoalRequest represents the request body for creating a goal
type CreateGoalRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *string         `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Icon          string          `json:"icon" validate:"max=16"`
}

// UpdateGoalRequest represents the request body for editing a goal.
// Only provided fields change. An empty deadline string clears the deadline.
type UpdateGoalRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	TargetAmount  *decimal.Decimal `json:"target_amount,omitempty"`
	CurrentAmount *decimal.Decimal `json:"current_amount,omitempty"`
	Deadline      *string          `json:"deadline,omitempty"`
	Icon          *string          `json:"icon,omitempty" validate:"omitempty,max=16"`
}
