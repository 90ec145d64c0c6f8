package application

import (
	"context"

	"github.com/dmehra2102/lesson-reservation/internal/order/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

type CatalogStore interface {
	// ConditionalDecrement removes quantity seats from the lesson only if at
	// least that many remain, atomically and inside unit. It reports false for
	// too few seats and for unknown lessons.
	ConditionalDecrement(ctx context.Context, unit uow.UnitOfWork, entryID string, quantity int) (bool, error)
}

type OrderLog interface {
	// Append records o inside unit and returns the assigned id. The order is
	// visible to readers only after unit commits.
	Append(ctx context.Context, unit uow.UnitOfWork, o domain.Order) (string, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	// ListRecent returns up to n orders, newest first.
	ListRecent(ctx context.Context, n int) ([]domain.Order, error)
	DeleteOne(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}
