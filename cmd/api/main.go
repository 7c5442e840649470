// Package main is the entry point for the metro commuter API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/metro-commuter/internal/config"
	"github.com/pkordes/metro-commuter/internal/handler"
	"github.com/pkordes/metro-commuter/internal/middleware"
	"github.com/pkordes/metro-commuter/internal/payment"
	"github.com/pkordes/metro-commuter/internal/qrtoken"
	"github.com/pkordes/metro-commuter/internal/repo"
	"github.com/pkordes/metro-commuter/internal/service"
	"github.com/pkordes/metro-commuter/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.AutoMigrate {
		if err := migrate(context.Background(), pool, logger); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Services ---------------------------------------------------------
	fares := service.FarePolicy{
		RatePerMinute:       cfg.Fare.RatePerMinute,
		Minimum:             cfg.Fare.Minimum,
		ZeroDurationMinutes: cfg.Fare.ZeroDurationMinutes,
	}
	fines := service.FinePolicy{
		GraceMinutes: cfg.Fine.GraceMinutes,
		PerMinute:    cfg.Fine.PerMinute,
	}

	stations := repo.NewStationRepo(pool)
	segments := repo.NewCachedSegmentRepo(repo.NewSegmentRepo(pool), cfg.ScheduleCacheTTL)
	tickets := repo.NewTicketRepo(pool)
	riders := repo.NewRiderRepo(pool)
	signer := qrtoken.NewSigner(cfg.QRSigningSecret, cfg.QRTokenTTL)
	gateway := payment.NewSandbox(cfg.PaymentCheckoutURL)

	srv := handler.NewServer(
		service.NewItineraryService(segments, stations, cfg.FallbackStationOrder, fares, logger),
		service.NewScheduleService(stations, segments),
		service.NewTicketService(tickets, segments, riders, gateway, signer, fares, logger),
		service.NewJourneyService(tickets, repo.NewTxRunner(pool), signer, fines, logger),
		logger,
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", handler.Handler(srv))

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending migrations through a database/sql handle borrowed
// from the pool, since goose speaks database/sql.
func migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		log.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
