package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Eursukkul/group-events/internal/apperror"
)

// callbackError marks an error returned by an Update callback so it can be
// told apart from gorm failures once the transaction unwinds.
type callbackError struct {
	err error
}

func (e *callbackError) Error() string { return e.err.Error() }
func (e *callbackError) Unwrap() error { return e.err }

// storageErr classifies err: callback errors pass through, missing rows
// become NotFound, everything else is StorageUnavailable.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var cb *callbackError
	if errors.As(err, &cb) {
		return cb.err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.NotFound, op, err)
	}
	return apperror.Wrap(apperror.StorageUnavailable, op, err)
}
