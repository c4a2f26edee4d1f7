// Package store holds the content-store lookups the vote engine and the
// authorization checks depend on.
package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
)

// translate maps a gorm error to an apperr kind. Record-not-found becomes a
// NotFound error described by what.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return apperr.Internal(err, "query %s", what)
}
