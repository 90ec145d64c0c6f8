package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	catalogapp "github.com/dmehra2102/lesson-reservation/internal/catalog/application"
	cataloghttp "github.com/dmehra2102/lesson-reservation/internal/catalog/infrastructure/http"
	catalogpg "github.com/dmehra2102/lesson-reservation/internal/catalog/infrastructure/postgres"
	"github.com/dmehra2102/lesson-reservation/internal/config"
	orderapp "github.com/dmehra2102/lesson-reservation/internal/order/application"
	orderhttp "github.com/dmehra2102/lesson-reservation/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/lesson-reservation/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/lesson-reservation/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/lesson-reservation/internal/platform/memory"
	"github.com/dmehra2102/lesson-reservation/pkg/database"
	"github.com/dmehra2102/lesson-reservation/pkg/httpx"
	"github.com/dmehra2102/lesson-reservation/pkg/idempotency"
	"github.com/dmehra2102/lesson-reservation/pkg/logging"
	"github.com/dmehra2102/lesson-reservation/pkg/outbox"
	"github.com/dmehra2102/lesson-reservation/pkg/shutdown"
	"github.com/dmehra2102/lesson-reservation/pkg/tracing"
	"github.com/dmehra2102/lesson-reservation/pkg/uow"
)

// stores is the wiring a driver hands to the services.
type stores struct {
	units   uow.Factory
	lessons interface {
		catalogapp.Repository
		orderapp.CatalogStore
	}
	orders orderapp.OrderLog
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("config invalid", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, config.ServiceName, cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	hooks := []shutdown.Hook{}
	var st stores

	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := memory.NewStore()
		st = stores{units: mem, lessons: mem.Catalog(), orders: mem.Orders()}
		if _, err := catalogapp.NewService(log, st.lessons).Seed(ctx); err != nil {
			log.Error("seed failed", "err", err)
			os.Exit(1)
		}
		log.Warn("using in-memory store; data is lost on restart")

	default:
		db := database.NewProvider(log, cfg.PGURL)
		// Warm the pool so a bad PG_URL fails at start rather than on the first order.
		if _, err := db.Pool(ctx); err != nil {
			log.Error("pg connect failed", "err", err)
			os.Exit(1)
		}
		st = stores{
			units:   database.NewTransactor(db),
			lessons: catalogpg.NewRepository(log, db),
			orders:  orderpg.NewRepository(log, db, config.ServiceName),
		}

		if cfg.KafkaAddr != "" {
			writer := orderkafka.NewWriter([]string{cfg.KafkaAddr})
			dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
			relay := outbox.NewRelay(log, orderpg.NewOutboxStore(log, db), dispatch, config.ServiceName+"-relay")
			go func() {
				if err := relay.Run(ctx); err != nil {
					log.Error("relay stopped with error", "err", err)
				}
			}()
			hooks = append(hooks, shutdown.Hook{Name: "kafka", Fn: func(context.Context) error { return writer.Close() }})
		} else {
			log.Info("KAFKA_ADDR not set; outbox events stay pending")
		}
		hooks = append(hooks, shutdown.Hook{Name: "postgres", Fn: func(context.Context) error {
			db.Close()
			return nil
		}})
	}

	var idem orderhttp.IdempotencyStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		// A claim outlives the reservation it guards by a small margin.
		idem = idempotency.NewStore(rdb, cfg.IdempotencyTTL).WithPendingTTL(cfg.Reserve.Deadline + 5*time.Second)
		hooks = append(hooks, shutdown.Hook{Name: "redis", Fn: func(context.Context) error { return rdb.Close() }})
	}

	coordinator := orderapp.NewCoordinator(log, st.units, st.lessons, st.orders, cfg.Reserve.Policy())
	orders := orderhttp.NewHandler(log, coordinator, orderapp.NewService(log, st.orders), idem)
	lessons := cataloghttp.NewHandler(log, catalogapp.NewService(log, st.lessons))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpx.RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", orderhttp.IdempotencyHeader},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Lesson reservation API is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	lessons.Register(r)
	r.Mount("/orders", orders.Routes())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Reserve.Deadline + 5*time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	// HTTP drains first so in-flight reservations finish before their stores close.
	hooks = append([]shutdown.Hook{{Name: "http", Fn: srv.Shutdown}}, hooks...)
	hooks = append(hooks, shutdown.Hook{Name: "tracer", Fn: tp.Shutdown})
	shutdown.Drain(log, 15*time.Second, hooks...)
	log.Info(config.ServiceName + " shutdown complete")
}
