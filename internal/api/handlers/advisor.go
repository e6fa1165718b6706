package handlers

import (
	"net/http"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/validation"
)

// AdvisorHandler handles chat requests to the financial advisor.
type AdvisorHandler struct {
	advisorService *service.AdvisorService
}

// NewAdvisorHandler creates a new AdvisorHandler with the provided service dependency.
func NewAdvisorHandler(advisorService *service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{
		advisorService: advisorService,
	}
}

// ChatResponse carries the advisor's answer.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST requests with a question for the advisor.
// Provider trouble yields a fixed apology with status 200.
//
// Endpoint: POST /api/advisor/chat
// Request Body: ChatRequest (message)
// Response: 200 OK with ChatResponse
// Error: 400 Bad Request if the message is missing
// Error: 500 Internal Server Error if the user's data could not be loaded
func (h *AdvisorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.ChatRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateChat(req); err != nil {
		respondValidation(w, err)
		return
	}

	reply, err := h.advisorService.Chat(r.Context(), sess, req.Message)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to load advisor context", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
