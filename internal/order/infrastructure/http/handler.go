package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/lesson-reservation/internal/order/application"
	"github.com/dmehra2102/lesson-reservation/internal/order/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/httpx"
	"github.com/dmehra2102/lesson-reservation/pkg/idempotency"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore is satisfied by *idempotency.Store.
type IdempotencyStore interface {
	Key(scope, clientKey string) string
	Claim(ctx context.Context, key string) (string, error)
	Complete(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}

type Handler struct {
	log         *slog.Logger
	coordinator *application.Coordinator
	service     *application.Service
	idem        IdempotencyStore
	tracer      trace.Tracer
}

// NewHandler builds the order routes. idem may be nil, in which case the
// Idempotency-Key header is ignored.
func NewHandler(log *slog.Logger, coordinator *application.Coordinator, service *application.Service, idem IdempotencyStore) *Handler {
	return &Handler{
		log:         log,
		coordinator: coordinator,
		service:     service,
		idem:        idem,
		tracer:      otel.Tracer("order-http"),
	}
}

type lineItemReq struct {
	EntryID  string `json:"entryId"`
	Quantity int    `json:"quantity"`
}

type createOrderReq struct {
	CustomerName  string        `json:"customerName"`
	CustomerPhone string        `json:"customerPhone"`
	Items         []lineItemReq `json:"items"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.createOrder)
	r.Delete("/", h.deleteAll)
	r.Get("/recent", h.recent)
	r.Get("/debug", h.recent)
	r.Get("/{id}", h.getOrder)
	r.Delete("/{id}", h.deleteOrder)
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	customer := domain.Customer{Name: req.CustomerName, Phone: req.CustomerPhone}
	items := make([]domain.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.LineItem{EntryID: it.EntryID, Quantity: it.Quantity})
	}
	if err := domain.ValidateReservation(customer, items); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var idemKey string
	if clientKey := r.Header.Get(IdempotencyHeader); clientKey != "" && h.idem != nil {
		idemKey = h.idem.Key("orders", clientKey)
		orderID, err := h.idem.Claim(ctx, idemKey)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			w.Header().Set("Retry-After", "1")
			httpx.Error(w, http.StatusConflict, "A request with this idempotency key is in progress")
			return
		case err != nil:
			h.log.Error("idempotency claim failed", "err", err)
			httpx.Error(w, http.StatusServiceUnavailable, "Order failed")
			return
		case orderID != "":
			httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "orderId": orderID, "replayed": true})
			return
		}
	}

	out, err := h.coordinator.Reserve(ctx, customer, items)
	if err != nil {
		h.releaseKey(ctx, idemKey)
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	switch out.Kind {
	case domain.OutcomeCommitted:
		if idemKey != "" {
			if err := h.idem.Complete(context.WithoutCancel(ctx), idemKey, out.OrderID); err != nil {
				h.log.Error("idempotency complete failed", "order_id", out.OrderID, "err", err)
			}
		}
		httpx.JSON(w, http.StatusCreated, map[string]any{"ok": true, "orderId": out.OrderID})
	case domain.OutcomeInsufficientCapacity:
		h.releaseKey(ctx, idemKey)
		httpx.JSON(w, http.StatusConflict, map[string]any{
			"error":   "Not enough spaces for one or more lessons",
			"entryId": out.FailingEntryID,
		})
	default:
		h.releaseKey(ctx, idemKey)
		httpx.Error(w, http.StatusInternalServerError, "Order failed")
	}
}

func (h *Handler) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		h.log.Warn("idempotency release failed", "err", err)
	}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	n := application.DefaultRecent
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			httpx.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		n = parsed
	}
	orders, err := h.service.Recent(r.Context(), n)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Order deleted successfully"})
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteAll(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		httpx.Error(w, http.StatusBadRequest, "Invalid order ID")
	case errors.Is(err, domain.ErrOrderNotFound):
		httpx.Error(w, http.StatusNotFound, "Order not found")
	default:
		h.log.Error("order request failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal error")
	}
}
