package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/database"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

const entryColumns = `id, subject, location, price, spaces, image, created_at, updated_at`

var sortColumns = map[domain.SortKey]string{
	domain.SortSubject:  "subject",
	domain.SortLocation: "location",
	domain.SortPrice:    "price",
	domain.SortCapacity: "spaces",
}

type Repository struct {
	log *slog.Logger
	db  *database.Provider
}

func NewRepository(log *slog.Logger, db *database.Provider) *Repository {
	return &Repository{log: log, db: db}
}

// ConditionalDecrement takes quantity seats from the lesson only while enough
// remain. The row lock taken by the UPDATE holds until the unit ends, so
// concurrent units touching the same lesson queue behind it and re-check the
// predicate against the committed value.
func (r *Repository) ConditionalDecrement(ctx context.Context, u uow.UnitOfWork, entryID string, quantity int) (bool, error) {
	tx, err := database.FromUnit(u)
	if err != nil {
		return false, err
	}
	ct, err := tx.Exec(ctx, `UPDATE lessons SET spaces = spaces - $2, updated_at = now()
		WHERE id = $1 AND spaces >= $2`, entryID, quantity)
	if err != nil {
		return false, database.Classify(fmt.Errorf("decrement lesson %s: %w", entryID, err))
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repository) List(ctx context.Context, q domain.Query) ([]domain.Entry, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		cond := fmt.Sprintf("subject ILIKE $%d OR location ILIKE $%d", len(args), len(args))
		if n, ok := q.Number(); ok {
			args = append(args, n)
			cond += fmt.Sprintf(" OR price = $%d OR spaces::bigint = $%d", len(args), len(args))
		}
		where = append(where, "("+cond+")")
	}

	sql := `SELECT ` + entryColumns + ` FROM lessons`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += orderBy(q)

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanEntry)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Entry, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	rows, err := pool.Query(ctx, `SELECT `+entryColumns+` FROM lessons WHERE id = $1`, id)
	if err != nil {
		return domain.Entry{}, err
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Entry{}, domain.ErrNotFound
	}
	return e, err
}

func (r *Repository) Update(ctx context.Context, id string, patch domain.Patch) (domain.Entry, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return domain.Entry{}, err
	}

	var (
		sets []string
		args = []any{id}
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Subject != nil {
		set("subject", *patch.Subject)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Capacity != nil {
		set("spaces", *patch.Capacity)
	}
	if patch.Image != nil {
		set("image", *patch.Image)
	}
	if len(sets) == 0 {
		return domain.Entry{}, domain.ErrEmptyPatch
	}
	sets = append(sets, "updated_at = now()")

	rows, err := pool.Query(ctx, `UPDATE lessons SET `+strings.Join(sets, ", ")+
		` WHERE id = $1 RETURNING `+entryColumns, args...)
	if err != nil {
		return domain.Entry{}, err
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Entry{}, domain.ErrNotFound
	}
	return e, err
}

func (r *Repository) Replace(ctx context.Context, entries []domain.Entry) error {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM lessons`); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO lessons (`+entryColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			e.ID, e.Subject, e.Location, e.Price, e.Capacity, e.Image, e.CreatedAt, e.UpdatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// orderBy falls back to subject for an unset or unknown sort key, the same
// order the in-memory store uses.
func orderBy(q domain.Query) string {
	col, ok := sortColumns[q.Sort]
	if !ok {
		col = sortColumns[domain.SortSubject]
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(` ORDER BY %s %s, id ASC`, col, dir)
}

func scanEntry(row pgx.CollectableRow) (domain.Entry, error) {
	var e domain.Entry
	err := row.Scan(&e.ID, &e.Subject, &e.Location, &e.Price, &e.Capacity, &e.Image, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
