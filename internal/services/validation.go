package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// validateEntity runs the struct tag checks of an entity and reports the
// first failing field as an InvalidField ValidationError
func validateEntity(entity interface{}) error {
	err := models.Validate(entity)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Code: InvalidField, Message: err.Error()}
	}

	fe := fieldErrs[0]
	msg := fmt.Sprintf("failed %q check", fe.Tag())
	if fe.Param() != "" {
		msg = fmt.Sprintf("failed %q check against %s", fe.Tag(), fe.Param())
	}
	return &ValidationError{Code: InvalidField, Field: fe.Field(), Message: msg}
}
