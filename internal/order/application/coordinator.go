package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/lesson-reservation/internal/order/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

const rollbackTimeout = 5 * time.Second

type RetryPolicy struct {
	// MaxAttempts counts the first try.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Deadline bounds the whole retry loop, backoff sleeps included.
	Deadline time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		Deadline:        10 * time.Second,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = max(def.MaxInterval, p.InitialInterval)
	}
	if p.Deadline <= 0 {
		p.Deadline = def.Deadline
	}
	return p
}

// Coordinator places orders: it takes seats from every requested lesson and
// records the order in one unit of work, or changes nothing.
type Coordinator struct {
	log     *slog.Logger
	units   uow.Factory
	catalog CatalogStore
	orders  OrderLog
	policy  RetryPolicy
	tracer  trace.Tracer
	now     func() time.Time
}

func NewCoordinator(log *slog.Logger, units uow.Factory, catalog CatalogStore, orders OrderLog, policy RetryPolicy) *Coordinator {
	return &Coordinator{
		log:     log,
		units:   units,
		catalog: catalog,
		orders:  orders,
		policy:  policy.withDefaults(),
		tracer:  otel.Tracer("order-reservation"),
		now:     time.Now,
	}
}

// Reserve runs the reservation protocol. The returned error is a
// *domain.ValidationError and is only set when the request was rejected
// before any store was touched; every other result is an Outcome.
//
// The work is detached from ctx cancellation: a caller that goes away still
// leaves the unit committed or rolled back. ctx values such as the active
// span are kept.
func (c *Coordinator) Reserve(ctx context.Context, customer domain.Customer, items []domain.LineItem) (domain.Outcome, error) {
	if err := domain.ValidateReservation(customer, items); err != nil {
		return domain.Outcome{}, err
	}

	ctx, span := c.tracer.Start(ctx, "Reserve", trace.WithAttributes(
		attribute.Int("order.items", len(items)),
	))
	defer span.End()

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.policy.Deadline)
	defer cancel()

	order := domain.NewOrder(customer, items, c.now())

	var (
		outcome  domain.Outcome
		attempts int
		lastErr  error
	)
	op := func() error {
		attempts++
		res, err := c.attempt(runCtx, order)
		switch {
		case err == nil:
			outcome = res
			return nil
		case uow.IsTransient(err):
			lastErr = err
			return err
		default:
			lastErr = err
			return backoff.Permanent(err)
		}
	}
	notify := func(err error, wait time.Duration) {
		c.log.Debug("reservation retry", "attempt", attempts, "wait", wait, "err", err)
	}

	if err := backoff.RetryNotify(op, c.schedule(runCtx), notify); err != nil {
		if lastErr != nil && !errors.Is(err, lastErr) {
			err = fmt.Errorf("%w (last attempt: %w)", err, lastErr)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation failed")
		if errors.Is(err, domain.ErrInvariantViolation) {
			c.log.Error("reservation invariant violated", "attempts", attempts, "err", err)
		} else {
			c.log.Error("reservation failed", "attempts", attempts, "err", err)
		}
		return domain.TransientFailure(err), nil
	}

	span.SetAttributes(
		attribute.String("reservation.outcome", outcome.Kind.String()),
		attribute.Int("reservation.attempts", attempts),
	)
	switch outcome.Kind {
	case domain.OutcomeCommitted:
		c.log.Info("order placed", "order_id", outcome.OrderID, "seats", order.Seats(), "attempts", attempts)
	case domain.OutcomeInsufficientCapacity:
		c.log.Debug("not enough spaces", "lesson_id", outcome.FailingEntryID, "attempts", attempts)
	}
	return outcome, nil
}

func (c *Coordinator) schedule(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.policy.InitialInterval
	exp.MaxInterval = c.policy.MaxInterval
	exp.MaxElapsedTime = 0 // the context deadline bounds the loop

	retries := uint64(max(c.policy.MaxAttempts-1, 0))
	return backoff.WithContext(backoff.WithMaxRetries(exp, retries), ctx)
}

// attempt runs one unit of work. A nil error means the outcome is final:
// Committed or InsufficientCapacity. The unit is rolled back on every path
// that does not commit.
func (c *Coordinator) attempt(ctx context.Context, order domain.Order) (domain.Outcome, error) {
	unit, err := c.units.Begin(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	committed := false
	defer func() {
		if !committed {
			c.rollback(ctx, unit)
		}
	}()

	for _, it := range order.Items {
		ok, err := c.catalog.ConditionalDecrement(ctx, unit, it.EntryID, it.Quantity)
		if err != nil {
			return domain.Outcome{}, err
		}
		if !ok {
			return domain.InsufficientCapacity(it.EntryID), nil
		}
	}

	id, err := c.orders.Append(ctx, unit, order)
	if err != nil {
		return domain.Outcome{}, err
	}
	if id == "" {
		return domain.Outcome{}, fmt.Errorf("%w: order log returned no id", domain.ErrInvariantViolation)
	}

	if err := unit.Commit(ctx); err != nil {
		return domain.Outcome{}, err
	}
	committed = true
	return domain.Committed(id), nil
}

func (c *Coordinator) rollback(ctx context.Context, unit uow.UnitOfWork) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := unit.Rollback(rctx); err != nil {
		c.log.Warn("rollback failed", "err", err)
	}
}
