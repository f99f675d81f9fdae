package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/contas/internal/auth"
	"github.com/MrJamesThe3rd/contas/internal/bill"
	"github.com/MrJamesThe3rd/contas/internal/config"
	"github.com/MrJamesThe3rd/contas/internal/export"
	contasHttp "github.com/MrJamesThe3rd/contas/internal/http"
	authHandler "github.com/MrJamesThe3rd/contas/internal/http/auth"
	billHandler "github.com/MrJamesThe3rd/contas/internal/http/bill"
	exportHandler "github.com/MrJamesThe3rd/contas/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/contas/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/contas/internal/http/matching"
	"github.com/MrJamesThe3rd/contas/internal/importer"
	"github.com/MrJamesThe3rd/contas/internal/kv"
	"github.com/MrJamesThe3rd/contas/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/contas/internal/matching/store"
	"github.com/MrJamesThe3rd/contas/internal/metrics"
	"github.com/MrJamesThe3rd/contas/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stderr, cfg.Log.Level)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.Auth.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := kv.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
	}
	defer store.Close()

	ledger := bill.NewLedger(store,
		bill.WithKey(cfg.Storage.LedgerKey),
		bill.WithLogger(slog.Default().With("component", "ledger")),
	)
	defer ledger.Close()

	if err := ledger.Load(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	collector, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	defer collector.Watch(ledger)()

	jwt := auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TTL)

	var (
		billService     = bill.NewService(ledger, auth.ContextIdentity{})
		importService   = importer.NewService()
		matchingService = matching.NewService(matchingStore.New(ledger))
		exportService   = export.NewService(billService)
	)

	var (
		billH     = billHandler.NewHandler(billService)
		importH   = importHandler.NewHandler(importService, billService, matchingService)
		exportH   = exportHandler.NewHandler(exportService)
		matchingH = matchingHandler.NewHandler(matchingService, billService)
	)

	routerCfg := contasHttp.Config{
		CORSOrigins: cfg.Server.CORSOrigins,
		JWT:         jwt,
		Metrics:     reg,
	}

	if cfg.Auth.DevIssuer {
		slog.Warn("development token endpoint enabled")

		routerCfg.TokenIssuer = authHandler.NewHandler(jwt, cfg.Auth.TTL)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           contasHttp.New(routerCfg, billH, importH, exportH, matchingH),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr, "backend", cfg.Storage.Backend)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		slog.Info("shutting down server")

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
