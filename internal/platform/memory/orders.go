package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	order "github.com/dmehra2102/lesson-reservation/internal/order/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

type OrderLog struct {
	s *Store
}

func (l *OrderLog) Append(ctx context.Context, u uow.UnitOfWork, o order.Order) (string, error) {
	mu, err := l.s.open(u)
	if err != nil {
		return "", err
	}
	o.ID = uuid.NewString()
	o.Items = slices.Clone(o.Items)
	mu.pending = append(mu.pending, o)
	return o.ID, nil
}

func (l *OrderLog) Get(ctx context.Context, id string) (order.Order, error) {
	if err := l.s.acquire(ctx); err != nil {
		return order.Order{}, err
	}
	defer l.s.release()

	for _, o := range l.s.orders {
		if o.ID == id {
			return clone(o), nil
		}
	}
	return order.Order{}, order.ErrOrderNotFound
}

func (l *OrderLog) ListRecent(ctx context.Context, n int) ([]order.Order, error) {
	if err := l.s.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.s.release()

	out := make([]order.Order, 0, min(n, len(l.s.orders)))
	for i := len(l.s.orders) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, clone(l.s.orders[i]))
	}
	return out, nil
}

func (l *OrderLog) DeleteOne(ctx context.Context, id string) error {
	if err := l.s.acquire(ctx); err != nil {
		return err
	}
	defer l.s.release()

	i := slices.IndexFunc(l.s.orders, func(o order.Order) bool { return o.ID == id })
	if i < 0 {
		return order.ErrOrderNotFound
	}
	l.s.orders = slices.Delete(l.s.orders, i, i+1)
	return nil
}

func (l *OrderLog) DeleteAll(ctx context.Context) (int64, error) {
	if err := l.s.acquire(ctx); err != nil {
		return 0, err
	}
	defer l.s.release()

	n := int64(len(l.s.orders))
	l.s.orders = nil
	return n, nil
}

func clone(o order.Order) order.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
