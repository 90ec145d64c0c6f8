package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", fmt.Errorf("update: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), true},
		{"lock not available", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, true},
		{"connection failure", &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"check violation", &pgconn.PgError{Code: pgerrcode.CheckViolation}, false},
		{"invalid uuid", &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.err)
			assert.Equal(t, tt.transient, uow.IsTransient(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, Classify(nil))
}

func TestFromUnit_RejectsForeignUnits(t *testing.T) {
	_, err := FromUnit(foreignUnit{})
	assert.ErrorIs(t, err, ErrForeignUnit)
}

type foreignUnit struct{}

func (foreignUnit) Commit(context.Context) error   { return nil }
func (foreignUnit) Rollback(context.Context) error { return nil }
