// Command reap-locks deletes expired edit locks in one pass. It covers
// deployments that run the sweep from an external cron job instead of the
// server's in-process reaper.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/opc-efiling/drafting-backend/internal/adapter/postgres"
	lockrepo "github.com/opc-efiling/drafting-backend/internal/adapter/postgres/lock"
	"github.com/opc-efiling/drafting-backend/internal/app"
	"github.com/opc-efiling/drafting-backend/internal/config"
	"github.com/opc-efiling/drafting-backend/internal/reaper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	r := reaper.New(logger, lockrepo.New(pool), cfg.Lock.SweepInterval)

	reaped, err := r.SweepOnce(ctx)
	if err != nil {
		logger.Error("sweep failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("sweep completed", slog.Int64("reaped", reaped))
}
