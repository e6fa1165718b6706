package validation

import (
	"strings"
	"time"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
)

func ValidateCreateGoal(req request.CreateGoalRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}
	validateStruct(req, errors)

	if !req.TargetAmount.IsPositive() {
		errors["target_amount"] = "target_amount must be greater than zero"
	}
	if req.CurrentAmount.IsNegative() {
		errors["current_amount"] = "current_amount cannot be negative"
	}

	return result(errors)
}

func ValidateUpdateGoal(req request.UpdateGoalRequest) error {
	errors := make(map[string]string)

	// Only validate provided fields
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errors["name"] = "name cannot be empty"
	}
	validateStruct(req, errors)

	if req.TargetAmount != nil && !req.TargetAmount.IsPositive() {
		errors["target_amount"] = "target_amount must be greater than zero"
	}
	if req.CurrentAmount != nil && req.CurrentAmount.IsNegative() {
		errors["current_amount"] = "current_amount cannot be negative"
	}
	if req.Deadline != nil && *req.Deadline != "" {
		if _, err := time.Parse("2006-01-02", *req.Deadline); err != nil {
			errors["deadline"] = "deadline must be a date in YYYY-MM-DD format"
		}
	}

	return result(errors)
}
