package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/service"
)

// StockHandler handles symbol catalog and quote requests.
type StockHandler struct {
	stockService   *service.StockService
	holdingService *service.HoldingService
}

// NewStockHandler creates a new StockHandler with the provided service dependencies.
func NewStockHandler(stockService *service.StockService, holdingService *service.HoldingService) *StockHandler {
	return &StockHandler{
		stockService:   stockService,
		holdingService: holdingService,
	}
}

// Stocks handles GET requests to search the symbol catalog.
//
// Endpoint: GET /api/stocks?q=
// Response: 200 OK with up to 10 matches, or the whole catalog when q is empty
// Error: 500 Internal Server Error if retrieval fails
func (h *StockHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stockService.SearchStocks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveStocks.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, stocks)
}

// Quote handles GET requests for the latest quote of a symbol.
//
// Endpoint: GET /api/quote/{symbol}
// Response: 200 OK with model.QuoteResult
// Error: 404 Not Found if the provider has no price for the symbol
// Error: 502 Bad Gateway if the provider could not be reached
// Error: 503 Service Unavailable if no provider key is configured
func (h *StockHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(chi.URLParam(r, "symbol"))
	if symbol == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidSymbol.Error(), nil)
		return
	}

	result := h.holdingService.GetCurrentPrice(r.Context(), symbol)
	switch result.Status {
	case model.QuoteStatusOK:
		response.RespondJSON(w, http.StatusOK, result)
	case model.QuoteStatusNotFound:
		response.RespondError(w, http.StatusNotFound, apperrors.ErrQuoteNotFound.Error(), result)
	case model.QuoteStatusNotConfigured:
		response.RespondError(w, http.StatusServiceUnavailable, "quote provider not configured", result)
	default:
		response.RespondError(w, http.StatusBadGateway, "quote provider unavailable", result)
	}
}
