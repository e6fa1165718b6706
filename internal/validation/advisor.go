package validation

import (
	"strings"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
)

func ValidateChat(req request.ChatRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Message) == "" {
		errors["message"] = "message is required"
	}
	validateStruct(req, errors)

	return result(errors)
}

func ValidateRefreshNews(req request.RefreshNewsRequest) error {
	errors := make(map[string]string)
	validateStruct(req, errors)
	return result(errors)
}
