package validation

import "github.com/ndewijer/finpilot-backend/internal/api/request"

func ValidateSignup(req request.SignupRequest) error {
	errors := make(map[string]string)
	validateStruct(req, errors)
	return result(errors)
}

func ValidateLogin(req request.LoginRequest) error {
	errors := make(map[string]string)
	validateStruct(req, errors)
	return result(errors)
}
