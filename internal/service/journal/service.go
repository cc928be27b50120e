// Package journal implements journal validation and the approval
// lifecycle: draft -> submitted -> approved -> posted, with posted as the
// terminal, immutable state.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kanriworks/ledger/internal/coa"
	"github.com/kanriworks/ledger/internal/division"
	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	Journals(ctx context.Context) ([]ledger.Journal, error)
	JournalByID(ctx context.Context, id uuid.UUID) (ledger.Journal, error)
}

// Writer defines write operations needed by the service. The host must
// serialize mutating calls; the service assumes a single writer.
type Writer interface {
	CreateJournal(ctx context.Context, j ledger.Journal) (ledger.Journal, error)
	UpdateJournal(ctx context.Context, j ledger.Journal) (ledger.Journal, error)
	DeleteJournal(ctx context.Context, id uuid.UUID) error
}

// Service exposes validation, creation and the lifecycle operations.
type Service interface {
	Validate(in Input) (ledger.Journal, errs.ValidationErrors)
	Create(ctx context.Context, in Input, autoPost bool) (ledger.Journal, error)
	Submit(ctx context.Context, id uuid.UUID) (ledger.Journal, error)
	Approve(ctx context.Context, id uuid.UUID) (ledger.Journal, error)
	Post(ctx context.Context, id uuid.UUID) (ledger.Journal, error)
	Revert(ctx context.Context, id uuid.UUID) (ledger.Journal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (ledger.Journal, error)
	List(ctx context.Context) ([]ledger.Journal, error)
}

type service struct {
	repo            Repo
	writer          Writer
	dir             *coa.Directory
	reg             *division.Registry
	requireDivision bool
	now             func() time.Time
}

// Option configures optional service behavior.
type Option func(*service)

// WithRequireDivision makes an omitted journal division a validation
// error instead of inferring it from the touched accounts.
func WithRequireDivision(required bool) Option {
	return func(s *service) { s.requireDivision = required }
}

// WithClock overrides the timestamp source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func New(repo Repo, writer Writer, dir *coa.Directory, reg *division.Registry, opts ...Option) Service {
	s := &service{repo: repo, writer: writer, dir: dir, reg: reg, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates the input and stores a new draft journal. With
// autoPost it is immediately posted, skipping the approval steps; this is
// the default path for bulk imports. On validation failure nothing is
// stored and the full error list is returned.
func (s *service) Create(ctx context.Context, in Input, autoPost bool) (ledger.Journal, error) {
	j, ves := s.Validate(in)
	if len(ves) > 0 {
		return ledger.Journal{}, ves
	}
	now := s.now()
	j.ID = uuid.New()
	j.Status = ledger.StatusDraft
	j.CreatedAt = now
	j.UpdatedAt = now
	created, err := s.writer.CreateJournal(ctx, j)
	if err != nil {
		return ledger.Journal{}, err
	}
	if autoPost {
		return s.advance(ctx, created.ID, ledger.ActionPost)
	}
	return created, nil
}

// Submit moves a draft journal into review.
func (s *service) Submit(ctx context.Context, id uuid.UUID) (ledger.Journal, error) {
	return s.advance(ctx, id, ledger.ActionSubmit)
}

// Approve accepts a submitted journal.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (ledger.Journal, error) {
	return s.advance(ctx, id, ledger.ActionApprove)
}

// Post finalizes a journal into the ledger. The balance invariant is
// re-checked here as a guard against stale stored data.
func (s *service) Post(ctx context.Context, id uuid.UUID) (ledger.Journal, error) {
	return s.advance(ctx, id, ledger.ActionPost)
}

// Revert sends a submitted or approved journal back to draft.
func (s *service) Revert(ctx context.Context, id uuid.UUID) (ledger.Journal, error) {
	return s.advance(ctx, id, ledger.ActionRevert)
}

// advance applies one lifecycle action through the central transition
// table.
func (s *service) advance(ctx context.Context, id uuid.UUID, action ledger.Action) (ledger.Journal, error) {
	j, err := s.repo.JournalByID(ctx, id)
	if err != nil {
		return ledger.Journal{}, err
	}
	if j.Status == ledger.StatusPosted {
		return ledger.Journal{}, errs.ErrAlreadyPosted
	}
	next, ok := j.Status.Next(action)
	if !ok {
		return ledger.Journal{}, &errs.TransitionError{Current: string(j.Status), Action: string(action)}
	}
	if next == ledger.StatusPosted && !j.Balanced() {
		debit, credit := j.Totals()
		return ledger.Journal{}, errs.ValidationErrors{{
			Code: errs.CodeNotBalanced, Debit: debit, Credit: credit,
			Detail: "stored journal no longer balances",
		}}
	}
	j.Status = next
	j.UpdatedAt = s.now()
	return s.writer.UpdateJournal(ctx, j)
}

// Delete removes a journal that has not been posted. Posted history is
// immutable and cannot be deleted.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	j, err := s.repo.JournalByID(ctx, id)
	if err != nil {
		return err
	}
	if j.Status == ledger.StatusPosted {
		return errs.ErrCannotDeletePosted
	}
	return s.writer.DeleteJournal(ctx, id)
}

// Get returns one journal by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.Journal, error) {
	return s.repo.JournalByID(ctx, id)
}

// List returns all journals ordered by (date, id).
func (s *service) List(ctx context.Context) ([]ledger.Journal, error) {
	return s.repo.Journals(ctx)
}
