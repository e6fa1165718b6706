package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/service"
	"github.com/ndewijer/finpilot-backend/internal/validation"
)

// AuthHandler handles account and sign-in requests.
type AuthHandler struct {
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler with the provided service dependency.
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

// Signup handles POST requests to create an account.
//
// Endpoint: POST /api/auth/signup
// Request Body: SignupRequest (email, password, optionally display_name)
// Response: 201 Created with service.AuthResult
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if the email is already registered
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SignupRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSignup(req); err != nil {
		respondValidation(w, err)
		return
	}

	result, err := h.userService.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEmail.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to create account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// Login handles POST requests to sign in.
//
// Endpoint: POST /api/auth/login
// Request Body: LoginRequest (email, password)
// Response: 200 OK with service.AuthResult
// Error: 401 Unauthorized for unknown email or wrong password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.LoginRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateLogin(req); err != nil {
		respondValidation(w, err)
		return
	}

	result, err := h.userService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to sign in", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Me handles GET requests for the signed-in account.
//
// Endpoint: GET /api/auth/me
// Response: 200 OK with model.User
// Error: 404 Not Found if the account was deleted after the token was issued
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Me(r.Context(), sess)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrUserNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to load account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}
