package reconcile

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/pantry/internal/domain/kitchen"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// newValidator builds the command validator with the reconciliation tags
func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("required_uuid", validateRequiredUUID)
	_ = validate.RegisterValidation("notblank", validateNotBlank)

	return validate
}

func validateRequiredUUID(fl validator.FieldLevel) bool {
	id, ok := fl.Field().Interface().(uuid.UUID)
	return ok && id != uuid.Nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return kitchen.CleanName(fl.Field().String()) != ""
}

// toAppError converts validator output into a validation AppError
func toAppError(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewValidationError(err.Error())
	}

	problems := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, errors.ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Tag:     fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return errors.NewValidationErrors(problems)
}

// fieldPath drops the command type from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationMessage(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required_uuid":
		return fmt.Sprintf("%s must be a non-empty id", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "required", "min":
		return fmt.Sprintf("%s must not be empty", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
