package application

import (
	"context"

	"github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
)

type Repository interface {
	List(ctx context.Context, q domain.Query) ([]domain.Entry, error)
	Get(ctx context.Context, id string) (domain.Entry, error)
	// Update applies patch and returns the updated entry, or domain.ErrNotFound.
	Update(ctx context.Context, id string, patch domain.Patch) (domain.Entry, error)
	// Replace drops every entry and inserts entries in one step.
	Replace(ctx context.Context, entries []domain.Entry) error
}
