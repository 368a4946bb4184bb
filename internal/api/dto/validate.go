package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

var validate = validator.New()

// Validate checks struct tags on a request payload and converts failures
// into a single validation error with per-field details.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = "failed " + fe.Tag() + " validation"
	}
	return apperrors.NewValidationError("invalid payload", details)
}
