package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ndewijer/finpilot-backend/internal/model"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("asset_type", validateAssetType)
	_ = v.RegisterValidation("news_category", validateNewsCategory)

	return v
}

func validateAssetType(fl validator.FieldLevel) bool {
	return model.AssetType(fl.Field().String()).IsValid()
}

func validateNewsCategory(fl validator.FieldLevel) bool {
	return model.NewsCategory(fl.Field().String()).IsValid()
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// validateStruct runs the tag rules of req and collects failures into fields.
func validateStruct(req any, fields map[string]string) {
	err := validate.Struct(req)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return
	}

	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be %s characters or less", fe.Field(), fe.Param())
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	case "asset_type":
		return fe.Field() + " must be one of stock, other"
	case "news_category":
		return fe.Field() + " must be one of general, forex, crypto, merger"
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

func result(fields map[string]string) error {
	if len(fields) > 0 {
		return &Error{Fields: fields}
	}
	return nil
}
