package remote

import (
	"errors"

	"github.com/amirasaad/finsync/pkg/domain"
	"gorm.io/gorm"
)

// mapError converts gorm errors anywhere in the chain to domain errors and
// returns anything else unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		switch {
		case errors.Is(cur, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(cur, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		}
	}
	return err
}
