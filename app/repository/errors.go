package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects an insert or update.
	ErrDuplicate = errors.New("duplicate record")
)

// translate maps gorm/driver errors onto the repository error set. Anything that is neither a
// missing row nor a unique violation is treated as the store being unavailable.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateKeyMessage(err):
		return ErrDuplicate
	default:
		return autherr.StoreUnavailable("identity", err)
	}
}

// isDuplicateKeyMessage covers drivers that do not implement gorm's error translator.
func isDuplicateKeyMessage(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
