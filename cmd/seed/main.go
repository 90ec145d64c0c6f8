package main

import (
	"context"
	"os"
	"time"

	"github.com/dmehra2102/lesson-reservation/internal/catalog/application"
	catalogpg "github.com/dmehra2102/lesson-reservation/internal/catalog/infrastructure/postgres"
	"github.com/dmehra2102/lesson-reservation/internal/config"
	orderpg "github.com/dmehra2102/lesson-reservation/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/lesson-reservation/pkg/database"
	"github.com/dmehra2102/lesson-reservation/pkg/logging"
)

// seed wipes orders and lessons, then loads the default lessons.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logging.New("info").Error("config invalid", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewProvider(log, cfg.PGURL)
	defer db.Close()

	deleted, err := orderpg.NewRepository(log, db, "seed").DeleteAll(ctx)
	if err != nil {
		log.Error("clear orders failed", "err", err)
		os.Exit(1)
	}

	lessons, err := application.NewService(log, catalogpg.NewRepository(log, db)).Seed(ctx)
	if err != nil {
		log.Error("seed lessons failed", "err", err)
		os.Exit(1)
	}
	log.Info("seed complete", "orders_deleted", deleted, "lessons", len(lessons))
}
