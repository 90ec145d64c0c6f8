// Package uow defines the unit-of-work boundary shared by the stores that take
// part in a reservation.
package uow

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransient marks a store failure that may succeed when the whole unit of
// work is attempted again (write conflicts, deadlocks, dropped connections).
var ErrTransient = errors.New("transient store failure")

// UnitOfWork is an open atomic unit. Exactly one of Commit or Rollback takes
// effect; Rollback after Commit is a no-op.
type UnitOfWork interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Transient wraps err so that IsTransient reports true for it.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
