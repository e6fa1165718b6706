package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/validation"
)

// GoalHandler handles HTTP requests for goal endpoints.
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new GoalHandler with the provided service dependency.
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

// AnalyzeResponse is returned by the analyze endpoint.
type AnalyzeResponse struct {
	Goal     model.Goal         `json:"goal"`
	Analysis model.GoalAnalysis `json:"analysis"`
}

// monthlyContribution reads the optional monthly_contribution query parameter.
func monthlyContribution(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	amount, err := request.ParseMonthlyContribution(r.URL.Query().Get("monthly_contribution"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidContribution.Error(), err.Error())
		return decimal.Zero, false
	}
	return amount, true
}

// Goals handles GET requests for the user's goals.
// Goals that were never scored are analyzed before the response is sent.
//
// Endpoint: GET /api/goals?monthly_contribution=
// Response: 200 OK with array of model.Goal
// Error: 400 Bad Request if monthly_contribution is invalid
// Error: 500 Internal Server Error if retrieval fails
func (h *GoalHandler) Goals(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	monthly, ok := monthlyContribution(w, r)
	if !ok {
		return
	}

	goals, err := h.goalService.GetGoals(r.Context(), sess, monthly)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveGoals.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, goals)
}

// CreateGoal handles POST requests to create a goal. The new goal is analyzed immediately.
//
// Endpoint: POST /api/goals?monthly_contribution=
// Request Body: CreateGoalRequest (name, target_amount, optionally current_amount, deadline, icon)
// Response: 201 Created with model.Goal
// Error: 400 Bad Request if validation fails
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	monthly, ok := monthlyContribution(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateGoalRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateGoal(req); err != nil {
		respondValidation(w, err)
		return
	}

	goal, err := h.goalService.CreateGoal(r.Context(), sess, req, monthly)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create goal", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, goal)
}

// UpdateGoal handles PUT requests to edit a goal. Only provided fields change.
//
// Endpoint: PUT /api/goals/{uuid}
// Request Body: UpdateGoalRequest
// Response: 200 OK with model.Goal
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the goal does not exist
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdateGoalRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateGoal(req); err != nil {
		respondValidation(w, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(r.Context(), sess, chi.URLParam(r, "uuid"), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrGoalNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrGoalNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update goal", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, goal)
}

// DeleteGoal handles DELETE requests to remove a goal.
//
// Endpoint: DELETE /api/goals/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the goal does not exist
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(r.Context(), sess, chi.URLParam(r, "uuid")); err != nil {
		if errors.Is(err, apperrors.ErrGoalNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrGoalNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete goal", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AnalyzeGoal handles POST requests to score a goal again.
//
// Endpoint: POST /api/goals/{uuid}/analyze?monthly_contribution=
// Response: 200 OK with AnalyzeResponse
// Error: 404 Not Found if the goal does not exist
func (h *GoalHandler) AnalyzeGoal(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	monthly, ok := monthlyContribution(w, r)
	if !ok {
		return
	}

	goal, analysis, err := h.goalService.ReanalyzeGoal(r.Context(), sess, chi.URLParam(r, "uuid"), monthly)
	if err != nil {
		if errors.Is(err, apperrors.ErrGoalNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrGoalNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to analyze goal", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, AnalyzeResponse{Goal: goal, Analysis: analysis})
}
