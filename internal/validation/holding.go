package validation

import (
	"strings"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
)

func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	validateStruct(req, errors)

	if !req.Shares.IsPositive() {
		errors["shares"] = "shares must be greater than zero"
	}
	if !req.AvgCost.IsPositive() {
		errors["avg_cost"] = "avg_cost must be greater than zero"
	}

	return result(errors)
}

func ValidateUpdateHolding(req request.UpdateHoldingRequest) error {
	errors := make(map[string]string)

	if !req.Shares.IsPositive() {
		errors["shares"] = "shares must be greater than zero"
	}
	if !req.AvgCost.IsPositive() {
		errors["avg_cost"] = "avg_cost must be greater than zero"
	}

	return result(errors)
}
