package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmehra2102/lesson-reservation/internal/order/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/database"
	"github.com/dmehra2102/lesson-reservation/pkg/tracing"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

type Repository struct {
	log     *slog.Logger
	db      *database.Provider
	headers map[string]string
}

func NewRepository(log *slog.Logger, db *database.Provider, source string) *Repository {
	return &Repository{
		log:     log,
		db:      db,
		headers: map[string]string{"source": source},
	}
}

// Append writes the order, its line items in request order and an
// OrderPlaced outbox row, all inside the caller's unit of work.
func (r *Repository) Append(ctx context.Context, u uow.UnitOfWork, o domain.Order) (string, error) {
	tx, err := database.FromUnit(u)
	if err != nil {
		return "", err
	}
	o.ID = uuid.NewString()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer_name, customer_phone, created_at) VALUES ($1,$2,$3,$4)`,
		o.ID, o.Customer.Name, o.Customer.Phone, o.CreatedAt)
	if err != nil {
		return "", database.Classify(fmt.Errorf("insert order: %w", err))
	}

	batch := &pgx.Batch{}
	for i, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, position, lesson_id, quantity) VALUES ($1,$2,$3,$4)`,
			o.ID, i, item.EntryID, item.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", database.Classify(fmt.Errorf("insert order items: %w", err))
	}

	payload, err := json.Marshal(domain.NewOrderPlaced(o))
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", o.ID, domain.EventOrderPlaced, payload, r.headers, tracing.Traceparent(ctx))
	if err != nil {
		return "", database.Classify(fmt.Errorf("insert outbox: %w", err))
	}
	return o.ID, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	var o domain.Order
	err = pool.QueryRow(ctx, `SELECT id, customer_name, customer_phone, created_at FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Customer.Name, &o.Customer.Phone, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	orders := map[string]*domain.Order{o.ID: &o}
	if err := loadItems(ctx, pool, orders); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) ListRecent(ctx context.Context, n int) ([]domain.Order, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, `SELECT id, customer_name, customer_phone, created_at FROM orders
		ORDER BY created_at DESC, id DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		var o domain.Order
		err := row.Scan(&o.ID, &o.Customer.Name, &o.Customer.Phone, &o.CreatedAt)
		return o, err
	})
	if err != nil || len(list) == 0 {
		return list, err
	}

	byID := make(map[string]*domain.Order, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
	}
	if err := loadItems(ctx, pool, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) DeleteOne(ctx context.Context, id string) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	ct, err := pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return 0, err
	}
	ct, err := pool.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadItems(ctx context.Context, q querier, orders map[string]*domain.Order) error {
	ids := make([]string, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	rows, err := q.Query(ctx, `SELECT order_id, lesson_id, quantity FROM order_items
		WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID string
			item    domain.LineItem
		)
		if err := rows.Scan(&orderID, &item.EntryID, &item.Quantity); err != nil {
			return err
		}
		if o, ok := orders[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}
