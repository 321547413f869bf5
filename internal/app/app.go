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

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/claims-backend/internal/adapter/blob/localfs"
	"github.com/heartmarshall/claims-backend/internal/adapter/postgres"
	claimrepo "github.com/heartmarshall/claims-backend/internal/adapter/postgres/claim"
	feedbackrepo "github.com/heartmarshall/claims-backend/internal/adapter/postgres/feedback"
	invoicerepo "github.com/heartmarshall/claims-backend/internal/adapter/postgres/invoice"
	lecturerrepo "github.com/heartmarshall/claims-backend/internal/adapter/postgres/lecturer"
	userrepo "github.com/heartmarshall/claims-backend/internal/adapter/postgres/user"
	"github.com/heartmarshall/claims-backend/internal/auth"
	"github.com/heartmarshall/claims-backend/internal/config"
	"github.com/heartmarshall/claims-backend/internal/service/account"
	"github.com/heartmarshall/claims-backend/internal/service/claim"
	"github.com/heartmarshall/claims-backend/internal/service/invoice"
	"github.com/heartmarshall/claims-backend/internal/transport/middleware"
	"github.com/heartmarshall/claims-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires the services and serves HTTP until ctx is cancelled,
// then drains in-flight requests within the configured shutdown timeout.
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

	tel, err := NewTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}()

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	blobs, err := localfs.New(cfg.Storage, logger)
	if err != nil {
		return err
	}

	handler, limiter, err := buildHandler(cfg, logger, tel, pool, blobs)
	if err != nil {
		return err
	}
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("application stopped")
	return nil
}

// buildHandler wires repositories, services and transport into the root
// HTTP handler. The returned limiter must be stopped on shutdown.
func buildHandler(
	cfg *config.Config,
	logger *slog.Logger,
	tel *Telemetry,
	pool *pgxpool.Pool,
	blobs *localfs.Store,
) (http.Handler, *middleware.RateLimiter, error) {
	txm := postgres.NewTxManager(pool)

	claims := claimrepo.New(pool)
	feedback := feedbackrepo.New(pool)
	invoices := invoicerepo.New(pool)
	lecturers := lecturerrepo.New(pool)
	users := userrepo.New(pool)

	claimSvc, err := claim.NewService(logger, tel.Meter(), claims, feedback, users, blobs, txm, cfg.Claims)
	if err != nil {
		return nil, nil, fmt.Errorf("claim service: %w", err)
	}
	invoiceSvc, err := invoice.NewService(logger, tel.Meter(), claims, invoices, lecturers, users, txm)
	if err != nil {
		return nil, nil, fmt.Errorf("invoice service: %w", err)
	}
	accountSvc := account.NewService(logger, users, lecturers, txm, cfg.Auth.PasswordCost, cfg.Claims.HourlyRate())

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	limiter := middleware.NewRateLimiter(time.Minute)

	router := rest.NewRouter(rest.Handlers{
		Auth:     rest.NewAuthHandler(accountSvc, jwtMgr, cfg.Auth.AccessTokenTTL, logger),
		Claims:   rest.NewClaimHandler(claimSvc, cfg.Storage.MaxDocumentBytes, logger),
		Invoices: rest.NewInvoiceHandler(invoiceSvc, logger),
		Users:    rest.NewUserHandler(accountSvc, logger),
		Health: rest.NewHealthHandler(Version,
			rest.Dependency{Name: "database", Pinger: pool},
			rest.Dependency{Name: "documents", Pinger: blobs},
		),
	}, limiter.Limit(cfg.Server.LoginRateLimit))

	// Auth runs before Logger so that access lines carry the actor.
	handler := chi.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtMgr, accountSvc, logger),
		middleware.Logger(logger),
	).Handler(router)

	return handler, limiter, nil
}
