package memory

import (
	"context"
	"time"

	catalog "github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

type CatalogRepository struct {
	s *Store
}

func (r *CatalogRepository) ConditionalDecrement(ctx context.Context, u uow.UnitOfWork, entryID string, quantity int) (bool, error) {
	mu, err := r.s.open(u)
	if err != nil {
		return false, err
	}
	e, ok := r.s.entries[entryID]
	if !ok || e.Capacity < quantity {
		return false, nil
	}
	prev, prevAt := e.Capacity, e.UpdatedAt
	e.Capacity -= quantity
	e.UpdatedAt = time.Now().UTC()
	mu.undo = append(mu.undo, func() {
		e.Capacity = prev
		e.UpdatedAt = prevAt
	})
	return true, nil
}

func (r *CatalogRepository) List(ctx context.Context, q catalog.Query) ([]catalog.Entry, error) {
	if err := r.s.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.s.release()

	out := make([]catalog.Entry, 0, len(r.s.entries))
	for _, e := range r.s.entries {
		if q.Matches(*e) {
			out = append(out, *e)
		}
	}
	q.SortEntries(out)
	return out, nil
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (catalog.Entry, error) {
	if err := r.s.acquire(ctx); err != nil {
		return catalog.Entry{}, err
	}
	defer r.s.release()

	e, ok := r.s.entries[id]
	if !ok {
		return catalog.Entry{}, catalog.ErrNotFound
	}
	return *e, nil
}

func (r *CatalogRepository) Update(ctx context.Context, id string, patch catalog.Patch) (catalog.Entry, error) {
	if err := r.s.acquire(ctx); err != nil {
		return catalog.Entry{}, err
	}
	defer r.s.release()

	e, ok := r.s.entries[id]
	if !ok {
		return catalog.Entry{}, catalog.ErrNotFound
	}
	patch.Apply(e)
	return *e, nil
}

func (r *CatalogRepository) Replace(ctx context.Context, entries []catalog.Entry) error {
	if err := r.s.acquire(ctx); err != nil {
		return err
	}
	defer r.s.release()

	r.s.entries = make(map[string]*catalog.Entry, len(entries))
	for _, e := range entries {
		e := e
		r.s.entries[e.ID] = &e
	}
	return nil
}
