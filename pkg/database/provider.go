package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Provider hands out the process-wide pool. The pool is opened on first use;
// concurrent first callers wait for that single open and share its result.
// A failed open is not remembered, so the next caller tries again.
type Provider struct {
	log  *slog.Logger
	open func(ctx context.Context) (*pgxpool.Pool, error)

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewProvider(log *slog.Logger, url string) *Provider {
	p := &Provider{log: log}
	p.open = func(ctx context.Context) (*pgxpool.Pool, error) {
		return Open(ctx, url)
	}
	return p
}

// Open connects, pings and applies the schema.
func Open(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, Classify(fmt.Errorf("pg ping: %w", err))
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (p *Provider) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		return p.pool, nil
	}
	pool, err := p.open(ctx)
	if err != nil {
		p.log.Warn("pg open failed", "err", err)
		return nil, err
	}
	p.pool = pool
	p.log.Info("pg pool ready")
	return pool, nil
}

func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}
