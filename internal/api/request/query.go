package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

// NewsQuery holds the parsed query parameters of the news endpoints.
type NewsQuery struct {
	Category model.NewsCategory
	MinID    *int64 // set only in pagination mode
}

// ParseNewsQuery extracts and validates the news query parameters.
//
// Validation rules:
//   - category: one of model.NewsCategories, defaults to general
//   - min_id: optional positive integer; its presence switches to pagination mode
func ParseNewsQuery(categoryParam, minIDParam string) (NewsQuery, error) {
	q := NewsQuery{Category: model.NewsCategoryGeneral}

	if categoryParam != "" {
		category := model.NewsCategory(strings.ToLower(strings.TrimSpace(categoryParam)))
		if !category.IsValid() {
			return NewsQuery{}, fmt.Errorf("invalid category %q", categoryParam)
		}
		q.Category = category
	}

	if minIDParam != "" {
		minID, err := strconv.ParseInt(minIDParam, 10, 64)
		if err != nil || minID <= 0 {
			return NewsQuery{}, fmt.Errorf("invalid min_id %q: must be a positive integer", minIDParam)
		}
		q.MinID = &minID
	}

	return q, nil
}

// ParseMonthlyContribution parses the monthly_contribution parameter used by goal analysis.
// Empty means zero.
func ParseMonthlyContribution(param string) (decimal.Decimal, error) {
	if param == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(param))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid monthly_contribution %q: %w", param, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid monthly_contribution %q: must not be negative", param)
	}

	return amount, nil
}
