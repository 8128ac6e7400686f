package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/acquirex/reconcile/pkg/domain"
)

// MapGormErrorToDomain converts GORM errors to domain errors so
// infrastructure concerns stay behind the repository boundary. The error
// chain is walked because GORM wraps driver errors.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	current := err
	for current != nil {
		switch {
		case errors.Is(current, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(current, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		}
		current = errors.Unwrap(current)
	}
	return err
}
