package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
)

type Service struct {
	log  *slog.Logger
	repo Repository
}

func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) List(ctx context.Context, q domain.Query) ([]domain.Entry, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id string) (domain.Entry, error) {
	if !domain.ValidID(id) {
		return domain.Entry{}, domain.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, patch domain.Patch) (domain.Entry, error) {
	if !domain.ValidID(id) {
		return domain.Entry{}, domain.ErrInvalidID
	}
	if err := patch.Validate(); err != nil {
		return domain.Entry{}, err
	}
	e, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Entry{}, err
	}
	s.log.Info("lesson updated", "lesson_id", id)
	return e, nil
}

// Seed replaces the catalog with the default lessons and returns them.
func (s *Service) Seed(ctx context.Context) ([]domain.Entry, error) {
	entries := DefaultLessons()
	if err := s.repo.Replace(ctx, entries); err != nil {
		return nil, err
	}
	s.log.Info("catalog seeded", "lessons", len(entries))
	return entries, nil
}
