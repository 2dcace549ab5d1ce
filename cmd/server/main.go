// Command server runs the drafting instruction backend: the REST API and
// the background lock reaper.
//
// Configuration is read from CONFIG_PATH (YAML) with environment overrides.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/opc-efiling/drafting-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
