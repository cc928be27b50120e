package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kanriworks/ledger/internal/backup"
	"github.com/kanriworks/ledger/internal/coa"
	"github.com/kanriworks/ledger/internal/config"
	"github.com/kanriworks/ledger/internal/dictionary"
	"github.com/kanriworks/ledger/internal/division"
	"github.com/kanriworks/ledger/internal/httpapi"
	"github.com/kanriworks/ledger/internal/service/balance"
	"github.com/kanriworks/ledger/internal/service/journal"
	"github.com/kanriworks/ledger/internal/storage/memory"
	pgstore "github.com/kanriworks/ledger/internal/storage/postgres"
)

// store is the full storage surface the wiring needs; both backends
// satisfy it.
type store interface {
	journal.Repo
	journal.Writer
	backup.Store
	httpapi.MasterStore
	httpapi.IdempotencyStore
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is a local dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	// Static master data; an inconsistent chart is fatal at startup.
	reg, err := division.New(dictionary.Divisions())
	if err != nil {
		logger.Error("invalid division masters", "err", err)
		os.Exit(1)
	}
	dir, err := coa.New(dictionary.Chart(), reg.Codes())
	if err != nil {
		logger.Error("invalid chart of accounts", "err", err)
		os.Exit(1)
	}

	var st store
	var closeFn func()
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		st = pg
		closeFn = pg.Close
		logger.Info("storage backend: postgres")
	} else {
		st = memory.New()
		logger.Info("storage backend: memory")
	}

	journals := journal.New(st, st, dir, reg, journal.WithRequireDivision(cfg.RequireDivision))
	balances := balance.New(st, dir)
	codec := backup.NewCodec(st, journals, dir, reg)
	handler := httpapi.New(journals, balances, codec, st, st, dir, reg, logger).Handler()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bookkeeping service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
