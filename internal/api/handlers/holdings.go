package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/validation"
)

// HoldingHandler handles HTTP requests for holding endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the holdingService.
type HoldingHandler struct {
	holdingService *service.HoldingService
}

// NewHoldingHandler creates a new HoldingHandler with the provided service dependency.
func NewHoldingHandler(holdingService *service.HoldingService) *HoldingHandler {
	return &HoldingHandler{
		holdingService: holdingService,
	}
}

// SummaryResponse is the portfolio summary with display strings for the totals.
type SummaryResponse struct {
	model.PortfolioSummary
	Formatted FormattedTotals `json:"formatted"`
}

// FormattedTotals holds the summary totals rendered as currency.
type FormattedTotals struct {
	TotalValue      string `json:"total_value"`
	TotalCost       string `json:"total_cost"`
	TotalProfitLoss string `json:"total_profit_loss"`
}

// Holdings handles GET requests for the user's holdings with live prices.
// Holdings whose quote could not be fetched are returned without price fields.
//
// Endpoint: GET /api/holdings
// Response: 200 OK with array of model.Holding
// Error: 500 Internal Server Error if retrieval fails
func (h *HoldingHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	holdings, err := h.holdingService.GetHoldingsWithPrices(r.Context(), sess)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHoldings.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// Summary handles GET requests for portfolio totals and allocation.
//
// Endpoint: GET /api/holdings/summary
// Response: 200 OK with SummaryResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *HoldingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	summary, err := h.holdingService.GetPortfolioSummary(r.Context(), sess)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHoldings.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, SummaryResponse{
		PortfolioSummary: summary,
		Formatted: FormattedTotals{
			TotalValue:      formatMoney(summary.TotalValue),
			TotalCost:       formatMoney(summary.TotalCost),
			TotalProfitLoss: formatMoney(summary.TotalProfitLoss),
		},
	})
}

// CreateHolding handles POST requests to add a holding.
//
// Endpoint: POST /api/holdings
// Request Body: CreateHoldingRequest (symbol, shares, avg_cost, optionally name and asset_type)
// Response: 201 Created with model.Holding
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the user already holds the symbol
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateHolding(req); err != nil {
		respondValidation(w, err)
		return
	}

	holding, err := h.holdingService.AddHolding(r.Context(), sess, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicateHolding):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateHolding.Error(), nil)
		case errors.Is(err, apperrors.ErrInvalidSymbol):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), nil)
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to create holding", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, holding)
}

// UpdateHolding handles PUT requests to change shares and average cost.
//
// Endpoint: PUT /api/holdings/{uuid}
// Request Body: UpdateHoldingRequest (shares, avg_cost)
// Response: 200 OK with model.Holding
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the holding does not exist
func (h *HoldingHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	holdingID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateHolding(req); err != nil {
		respondValidation(w, err)
		return
	}

	holding, err := h.holdingService.UpdateHolding(r.Context(), sess, holdingID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update holding", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// DeleteHolding handles DELETE requests to remove a holding.
//
// Endpoint: DELETE /api/holdings/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the holding does not exist
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.holdingService.DeleteHolding(r.Context(), sess, chi.URLParam(r, "uuid")); err != nil {
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete holding", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
