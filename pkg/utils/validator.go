package utils

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "counsel-dispatch/pkg/errors"
)

// EchoValidator adapts go-playground/validator to echo's Validator interface.
type EchoValidator struct {
	validate *validator.Validate
}

func NewValidator(v *validator.Validate) *EchoValidator {
	return &EchoValidator{validate: v}
}

func (ev *EchoValidator) Validate(i interface{}) error {
	if err := ev.validate.Struct(i); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "validation failed: "+err.Error(), err)
	}
	return nil
}
