package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("unique constraint violated")
	// ErrForeignKey is returned when a referenced row does not exist.
	ErrForeignKey = errors.New("foreign key constraint violated")
	// ErrInvalidLookup is returned for filters or search fields a model does not expose.
	ErrInvalidLookup = errors.New("invalid lookup")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// ClassifyError maps driver errors onto the package sentinels. Errors it
// does not recognise are returned unchanged.
func ClassifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	}

	// Fallback for drivers without error translation
	msg := err.Error()
	switch {
	case strings.Contains(msg, "SQLSTATE 23505"),
		strings.Contains(msg, "duplicate key value"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrDuplicate
	case strings.Contains(msg, "SQLSTATE 23503"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrForeignKey
	}
	return err
}
