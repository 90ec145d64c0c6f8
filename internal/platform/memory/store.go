// Package memory keeps lessons and orders in process memory. Units of work
// run one at a time, which gives them full isolation; reads wait for the
// running unit so they never see uncommitted seats or orders.
package memory

import (
	"context"
	"errors"

	catalog "github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
	order "github.com/dmehra2102/lesson-reservation/internal/order/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

var (
	ErrUnitClosed  = errors.New("unit of work already finished")
	ErrForeignUnit = errors.New("unit of work was not opened by this store")
)

type Store struct {
	sem     chan struct{}
	entries map[string]*catalog.Entry
	orders  []order.Order
}

func NewStore() *Store {
	return &Store{
		sem:     make(chan struct{}, 1),
		entries: make(map[string]*catalog.Entry),
	}
}

func (s *Store) Catalog() *CatalogRepository { return &CatalogRepository{s: s} }

func (s *Store) Orders() *OrderLog { return &OrderLog{s: s} }

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return uow.Transient(ctx.Err())
	}
}

func (s *Store) release() { <-s.sem }

func (s *Store) Begin(ctx context.Context) (uow.UnitOfWork, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	return &unit{s: s}, nil
}

type unit struct {
	s       *Store
	undo    []func()
	pending []order.Order
	done    bool
}

func (u *unit) Commit(context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	u.s.orders = append(u.s.orders, u.pending...)
	u.done = true
	u.s.release()
	return nil
}

func (u *unit) Rollback(context.Context) error {
	if u.done {
		return nil
	}
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.done = true
	u.s.release()
	return nil
}

func (s *Store) open(u uow.UnitOfWork) (*unit, error) {
	mu, ok := u.(*unit)
	if !ok || mu.s != s {
		return nil, ErrForeignUnit
	}
	if mu.done {
		return nil, ErrUnitClosed
	}
	return mu, nil
}
