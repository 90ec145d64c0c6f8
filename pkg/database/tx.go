package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

var ErrForeignUnit = errors.New("unit of work was not opened by the postgres transactor")

// Transactor opens read-committed transactions. Conditional updates in
// Postgres take the row lock and re-check their predicate after a concurrent
// writer commits, which is the isolation the reservation protocol relies on.
type Transactor struct {
	provider *Provider
}

func NewTransactor(provider *Provider) *Transactor {
	return &Transactor{provider: provider}
}

func (t *Transactor) Begin(ctx context.Context) (uow.UnitOfWork, error) {
	pool, err := t.provider.Pool(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, Classify(fmt.Errorf("begin: %w", err))
	}
	return &Tx{tx: tx}, nil
}

type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return Classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// FromUnit returns the pgx transaction behind a unit opened by Transactor.
func FromUnit(u uow.UnitOfWork) (pgx.Tx, error) {
	t, ok := u.(*Tx)
	if !ok || t == nil {
		return nil, ErrForeignUnit
	}
	return t.tx, nil
}
