// Package app wires configuration, storage, services, and transport into a
// running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opc-efiling/drafting-backend/internal/adapter/postgres"
	circulationrepo "github.com/opc-efiling/drafting-backend/internal/adapter/postgres/circulation"
	draftrepo "github.com/opc-efiling/drafting-backend/internal/adapter/postgres/draft"
	instructionrepo "github.com/opc-efiling/drafting-backend/internal/adapter/postgres/instruction"
	lockrepo "github.com/opc-efiling/drafting-backend/internal/adapter/postgres/lock"
	signaturerepo "github.com/opc-efiling/drafting-backend/internal/adapter/postgres/signature"
	userrepo "github.com/opc-efiling/drafting-backend/internal/adapter/postgres/user"
	"github.com/opc-efiling/drafting-backend/internal/auth"
	"github.com/opc-efiling/drafting-backend/internal/config"
	"github.com/opc-efiling/drafting-backend/internal/notify"
	"github.com/opc-efiling/drafting-backend/internal/reaper"
	authservice "github.com/opc-efiling/drafting-backend/internal/service/auth"
	circulationservice "github.com/opc-efiling/drafting-backend/internal/service/circulation"
	lockservice "github.com/opc-efiling/drafting-backend/internal/service/lock"
	workflowservice "github.com/opc-efiling/drafting-backend/internal/service/workflow"
	"github.com/opc-efiling/drafting-backend/internal/transport/middleware"
	"github.com/opc-efiling/drafting-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, builds the service graph, and runs the HTTP server and the
// lock reaper until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// Repositories.
	locks := lockrepo.New(pool)
	instructions := instructionrepo.New(pool)
	drafts := draftrepo.New(pool)
	circulations := circulationrepo.New(pool)
	signatures := signaturerepo.New(pool)
	users := userrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	// Services.
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	dispatcher := notify.NewLogDispatcher(logger)

	lockSvc := lockservice.NewService(logger, locks, cfg.Lock.TTL)
	workflowSvc := workflowservice.NewService(logger, workflowservice.Deps{
		Instructions: instructions,
		Drafts:       drafts,
		Signatures:   signatures,
		Circulation:  circulations,
		Users:        users,
		Locks:        lockSvc,
		Tx:           txManager,
		Notifier:     dispatcher,
	})
	circulationSvc := circulationservice.NewService(logger, circulations, drafts)
	authSvc := authservice.NewService(logger, users, jwtManager)

	lockReaper := reaper.New(logger, locks, cfg.Lock.SweepInterval)

	// Transport.
	mux := rest.NewRouter(rest.Handlers{
		Auth:        rest.NewAuthHandler(authSvc, logger),
		Lock:        rest.NewLockHandler(lockSvc, logger),
		Instruction: rest.NewInstructionHandler(workflowSvc, logger),
		Circulation: rest.NewCirculationHandler(circulationSvc, logger),
		Health:      rest.NewHealthHandler(pool, BuildVersion()),
	})

	rateLimiter := middleware.NewRateLimiter(5 * time.Minute)
	defer rateLimiter.Stop()

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		rateLimiter.Limit(600),
		middleware.Auth(jwtManager),
	)(mux)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := lockReaper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("lock reaper: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application stopped")
	return nil
}
