// Package httpapi wires the HTTP surface of the bookkeeping service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kanriworks/ledger/internal/backup"
	"github.com/kanriworks/ledger/internal/coa"
	"github.com/kanriworks/ledger/internal/division"
	"github.com/kanriworks/ledger/internal/ledger"
	"github.com/kanriworks/ledger/internal/service/balance"
	"github.com/kanriworks/ledger/internal/service/journal"
)

// MasterStore abstracts the auxiliary master-data operations the API
// needs.
type MasterStore interface {
	UnitOwners(ctx context.Context) ([]ledger.UnitOwner, error)
	UpsertUnitOwner(ctx context.Context, u ledger.UnitOwner) error
	Vendors(ctx context.Context) ([]ledger.Vendor, error)
	UpsertVendor(ctx context.Context, v ledger.Vendor) error
}

// IdempotencyStore resolves and records Idempotency-Key mappings for
// journal creation.
type IdempotencyStore interface {
	ResolveJournalByIdempotencyKey(ctx context.Context, key string) (ledger.Journal, bool, error)
	SaveJournalIdempotencyKey(ctx context.Context, key string, id uuid.UUID) error
}

// Server wires handlers and middleware using Chi.
type Server struct {
	journals journal.Service
	balances balance.Service
	codec    *backup.Codec
	masters  MasterStore
	idem     IdempotencyStore
	dir      *coa.Directory
	reg      *division.Registry
	log      *slog.Logger
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware. The logger
// is used by request/response logging and panic recovery.
func New(journals journal.Service, balances balance.Service, codec *backup.Codec, masters MasterStore, idem IdempotencyStore, dir *coa.Directory, reg *division.Registry, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		journals: journals,
		balances: balances,
		codec:    codec,
		masters:  masters,
		idem:     idem,
		dir:      dir,
		reg:      reg,
		log:      logger,
		rt:       r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	// Journals
	s.rt.Post("/v1/journals", s.postJournal)
	s.rt.Get("/v1/journals", s.listJournals)
	s.rt.Get("/v1/journals/{id}", s.getJournal)
	s.rt.Post("/v1/journals/{id}/submit", s.journalAction(s.journals.Submit))
	s.rt.Post("/v1/journals/{id}/approve", s.journalAction(s.journals.Approve))
	s.rt.Post("/v1/journals/{id}/post", s.journalAction(s.journals.Post))
	s.rt.Post("/v1/journals/{id}/revert", s.journalAction(s.journals.Revert))
	s.rt.Delete("/v1/journals/{id}", s.deleteJournal)
	// Chart of accounts and divisions (read-only)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{code}", s.getAccount)
	s.rt.Get("/v1/accounts/{code}/balance", s.getAccountBalance)
	s.rt.Get("/v1/divisions", s.listDivisions)
	// Reports
	s.rt.Get("/v1/trial-balance", s.trialBalance)
	s.rt.Get("/v1/opening-balances", s.openingBalances)
	// Backup / import
	s.rt.Get("/v1/backup", s.getBackup)
	s.rt.Post("/v1/restore", s.postRestore)
	s.rt.Post("/v1/import", s.postImport)
	// Auxiliary masters
	s.rt.Get("/v1/unit-owners", s.listUnitOwners)
	s.rt.Put("/v1/unit-owners/{unitNumber}", s.putUnitOwner)
	s.rt.Get("/v1/vendors", s.listVendors)
	s.rt.Put("/v1/vendors/{code}", s.putVendor)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
