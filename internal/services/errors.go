package services

import (
	"errors"
	"fmt"

	"github.com/curio-learn/profile-service/internal/repositories"
	"github.com/curio-learn/profile-service/internal/validator"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrValidationFailed = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
)

// mapRepositoryError turns repository sentinels into service sentinels.
// Other errors are wrapped with op.
func mapRepositoryError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFoundError(err):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case repositories.IsDuplicateError(err):
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	case errors.Is(err, repositories.ErrInvalidLookup), errors.Is(err, repositories.ErrForeignKey):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// validationError wraps field errors so both errors.Is(err, ErrValidationFailed)
// and errors.As(err, &validator.ValidationErrors{}) hold.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

func fieldError(field, message, rule string, value interface{}) error {
	return validationError(validator.ValidationErrors{{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}})
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}
