package dm

import (
	"errors"

	"github.com/gizetz/gbairai/internal/apperr"
	"github.com/gizetz/gbairai/internal/store"
)

// fromStore maps store.ErrNotFound to notFound and any other store failure
// to an internal error.
func fromStore(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return apperr.Internal(err)
}
