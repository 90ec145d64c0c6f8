package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/lesson-reservation/internal/order/domain"
)

const (
	DefaultRecent = 5
	MaxRecent     = 100
)

// Service covers the administrative order operations. They act on the order
// log directly and never touch lesson capacity.
type Service struct {
	log    *slog.Logger
	orders OrderLog
}

func NewService(log *slog.Logger, orders OrderLog) *Service {
	return &Service{log: log, orders: orders}
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	if !domain.ValidID(id) {
		return domain.Order{}, domain.ErrInvalidID
	}
	return s.orders.Get(ctx, id)
}

func (s *Service) Recent(ctx context.Context, n int) ([]domain.Order, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	n = min(n, MaxRecent)
	return s.orders.ListRecent(ctx, n)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return domain.ErrInvalidID
	}
	if err := s.orders.DeleteOne(ctx, id); err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id)
	return nil
}

func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.orders.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("orders cleared", "deleted", n)
	return n, nil
}
