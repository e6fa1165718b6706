package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Rhymond/go-money"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/session"
	"github.com/ndewijer/finpilot-backend/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// displayCurrency is the currency totals are formatted in.
const displayCurrency = money.USD

// errEmptyBody is returned by parseJSON when the request has no body at all.
var errEmptyBody = errors.New("request body is empty")

// parseJSON decodes the request body into T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errEmptyBody
		}
		return req, fmt.Errorf("malformed JSON: %w", err)
	}

	return req, nil
}

// sessionFrom returns the session placed on the request by RequireSession.
func sessionFrom(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), nil)
	}
	return sess, ok
}

// respondValidation writes a 400 for a failed validation, listing the fields when known.
func respondValidation(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// formatMoney renders an amount as a currency string, e.g. "$1,234.50".
// Amounts whose cents do not fit in an int64 are rendered without grouping.
func formatMoney(amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0).BigInt()
	if !cents.IsInt64() {
		log.Warn().Str("amount", amount.String()).Msg("Amount exceeds currency formatter range")
		sign := ""
		if amount.IsNegative() {
			sign = "-"
		}
		return sign + money.GetCurrency(displayCurrency).Grapheme + amount.Abs().StringFixed(2)
	}
	return money.New(cents.Int64(), displayCurrency).Display()
}
