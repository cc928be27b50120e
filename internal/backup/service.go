package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kanriworks/ledger/internal/coa"
	"github.com/kanriworks/ledger/internal/division"
	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
	"github.com/kanriworks/ledger/internal/service/journal"
)

// Store is the storage surface the codec needs: bulk journal access and
// auxiliary master upserts.
type Store interface {
	Journals(ctx context.Context) ([]ledger.Journal, error)
	ReplaceJournals(ctx context.Context, journals []ledger.Journal) error
	ClearJournals(ctx context.Context) error
	UnitOwners(ctx context.Context) ([]ledger.UnitOwner, error)
	UpsertUnitOwner(ctx context.Context, u ledger.UnitOwner) error
	Vendors(ctx context.Context) ([]ledger.Vendor, error)
	UpsertVendor(ctx context.Context, v ledger.Vendor) error
	ClearMasters(ctx context.Context) error
}

// Failure reports one rejected import journal by its position in the
// document.
type Failure struct {
	Index  int                   `json:"index"`
	Errors errs.ValidationErrors `json:"errors"`
}

// Summary is the result of an import run. A per-journal failure does
// not abort the batch; successful journals stay committed.
type Summary struct {
	JournalsCreated int       `json:"journalsCreated"`
	JournalsFailed  int       `json:"journalsFailed"`
	Failures        []Failure `json:"failures,omitempty"`
}

// Codec exports, restores and imports engine state.
type Codec struct {
	store    Store
	journals journal.Service
	dir      *coa.Directory
	reg      *division.Registry
	now      func() time.Time
}

func NewCodec(store Store, journals journal.Service, dir *coa.Directory, reg *division.Registry) *Codec {
	return &Codec{
		store:    store,
		journals: journals,
		dir:      dir,
		reg:      reg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Export snapshots the whole engine state into a backup document.
func (c *Codec) Export(ctx context.Context) (Document, error) {
	journals, err := c.store.Journals(ctx)
	if err != nil {
		return Document{}, err
	}
	owners, err := c.store.UnitOwners(ctx)
	if err != nil {
		return Document{}, err
	}
	vendors, err := c.store.Vendors(ctx)
	if err != nil {
		return Document{}, err
	}
	doc := Document{
		Version:    Version,
		ExportedAt: c.now(),
		Accounts:   make([]AccountRecord, 0, c.dir.Len()),
		Journals:   make([]JournalRecord, 0, len(journals)),
		UnitOwners: make([]UnitOwnerRecord, 0, len(owners)),
		Vendors:    make([]VendorRecord, 0, len(vendors)),
	}
	for _, a := range c.dir.All() {
		doc.Accounts = append(doc.Accounts, AccountRecord{
			Code:       a.Code,
			Name:       a.Name,
			ShortName:  a.ShortName,
			Class:      string(a.Class),
			Level:      a.Level,
			ParentCode: a.ParentCode,
			Postable:   a.Postable,
			Division:   string(a.Division),
		})
	}
	for _, d := range c.reg.All() {
		doc.Divisions = append(doc.Divisions, DivisionRecord{
			Code:            string(d.Code),
			Name:            d.Name,
			Active:          d.Active,
			FiscalYearStart: fmt.Sprintf("%02d-%02d", int(d.FiscalYearStart.Month), d.FiscalYearStart.Day),
			FiscalYearEnd:   fmt.Sprintf("%02d-%02d", int(d.FiscalYearEnd.Month), d.FiscalYearEnd.Day),
		})
	}
	for _, j := range journals {
		doc.Journals = append(doc.Journals, journalRecord(j))
	}
	for _, u := range owners {
		doc.UnitOwners = append(doc.UnitOwners, UnitOwnerRecord(u))
	}
	for _, v := range vendors {
		doc.Vendors = append(doc.Vendors, VendorRecord(v))
	}
	return doc, nil
}

// Restore replaces engine state verbatim from a backup document,
// preserving ids, statuses and timestamps. Any malformed journal record
// fails the whole restore before anything is written.
func (c *Codec) Restore(ctx context.Context, doc Document) error {
	if doc.Version != Version {
		return fmt.Errorf("unsupported backup version %d", doc.Version)
	}
	journals := make([]ledger.Journal, 0, len(doc.Journals))
	for _, rec := range doc.Journals {
		j, err := parseJournal(rec)
		if err != nil {
			return err
		}
		for _, d := range j.Details {
			if _, lerr := c.dir.Lookup(d.AccountCode); lerr != nil {
				return fmt.Errorf("journal %s: account %s: %w", rec.ID, d.AccountCode, lerr)
			}
		}
		if j.Division != "" && !c.reg.Known(j.Division) {
			return fmt.Errorf("journal %s: unknown division %q", rec.ID, j.Division)
		}
		journals = append(journals, j)
	}
	if err := c.store.ReplaceJournals(ctx, journals); err != nil {
		return err
	}
	if err := c.store.ClearMasters(ctx); err != nil {
		return err
	}
	for _, u := range doc.UnitOwners {
		if err := c.store.UpsertUnitOwner(ctx, ledger.UnitOwner(u)); err != nil {
			return err
		}
	}
	for _, v := range doc.Vendors {
		if err := c.store.UpsertVendor(ctx, ledger.Vendor(v)); err != nil {
			return err
		}
	}
	return nil
}

// Import applies an import document: optional clear, master merges,
// opening balances, then one auto-posted create per journal. Journal
// failures are collected per index and never abort the batch.
func (c *Codec) Import(ctx context.Context, doc ImportDocument) (Summary, error) {
	if doc.ClearExisting {
		if err := c.store.ClearJournals(ctx); err != nil {
			return Summary{}, err
		}
		if err := c.store.ClearMasters(ctx); err != nil {
			return Summary{}, err
		}
	}
	for _, u := range doc.UnitOwners {
		if err := c.store.UpsertUnitOwner(ctx, ledger.UnitOwner(u)); err != nil {
			return Summary{}, err
		}
	}
	for _, v := range doc.Vendors {
		if err := c.store.UpsertVendor(ctx, ledger.Vendor(v)); err != nil {
			return Summary{}, err
		}
	}
	if doc.OpeningBalances != nil {
		if err := c.applyOpeningBalances(ctx, *doc.OpeningBalances); err != nil {
			return Summary{}, err
		}
	}
	var sum Summary
	for i, rec := range doc.Journals {
		in := journal.Input{
			Date:        rec.Date,
			Description: rec.Description,
			Reference:   rec.Reference,
			Division:    ledger.DivisionCode(rec.Division),
			Metadata:    rec.Metadata,
		}
		for _, dr := range rec.Details {
			in.Details = append(in.Details, journal.DetailInput{
				AccountCode: dr.AccountCode,
				Debit:       dr.DebitAmount,
				Credit:      dr.CreditAmount,
				Note:        dr.Note,
			})
		}
		if _, err := c.journals.Create(ctx, in, true); err != nil {
			var ves errs.ValidationErrors
			if !errors.As(err, &ves) {
				return sum, err
			}
			sum.JournalsFailed++
			sum.Failures = append(sum.Failures, Failure{Index: i, Errors: ves})
			continue
		}
		sum.JournalsCreated++
	}
	return sum, nil
}

// applyOpeningBalances converts opening entries into synthetic balanced
// journals, one per division of the touched accounts. A group that does
// not balance on its own gets a balancing line against that division's
// surplus account.
func (c *Codec) applyOpeningBalances(ctx context.Context, ob OpeningBalances) error {
	groups := make(map[ledger.DivisionCode][]DetailRecord)
	var order []ledger.DivisionCode
	for _, e := range ob.Entries {
		acc, err := c.dir.Lookup(e.AccountCode)
		if err != nil {
			return fmt.Errorf("opening balance account %s: %w", e.AccountCode, err)
		}
		if _, ok := groups[acc.Division]; !ok {
			order = append(order, acc.Division)
		}
		groups[acc.Division] = append(groups[acc.Division], e)
	}
	for _, code := range order {
		div, err := c.reg.Lookup(code)
		if err != nil {
			return err
		}
		in := journal.Input{
			Date:        ob.Date,
			Description: "期首残高",
			Division:    code,
		}
		var net int64
		for _, e := range groups[code] {
			in.Details = append(in.Details, journal.DetailInput{
				AccountCode: e.AccountCode,
				Debit:       e.DebitAmount,
				Credit:      e.CreditAmount,
			})
			net += int64(e.DebitAmount) - int64(e.CreditAmount)
		}
		if net != 0 {
			bal := journal.DetailInput{AccountCode: div.Defaults.Surplus}
			if net > 0 {
				bal.Credit = float64(net)
			} else {
				bal.Debit = float64(-net)
			}
			in.Details = append(in.Details, bal)
		}
		if _, err := c.journals.Create(ctx, in, true); err != nil {
			return fmt.Errorf("opening balances for %s: %w", code, err)
		}
	}
	return nil
}

// DeriveImport converts a backup document into an import document that
// reproduces the source engine's balances: posted journals only, masters
// carried over, existing state cleared.
func DeriveImport(doc Document) ImportDocument {
	out := ImportDocument{
		ClearExisting: true,
		UnitOwners:    doc.UnitOwners,
		Vendors:       doc.Vendors,
	}
	for _, rec := range doc.Journals {
		if ledger.JournalStatus(rec.Status) != ledger.StatusPosted {
			continue
		}
		out.Journals = append(out.Journals, ImportJournal{
			Date:        rec.Date,
			Description: rec.Description,
			Reference:   rec.Reference,
			Division:    rec.Division,
			Details:     rec.Details,
			Metadata:    rec.Metadata,
		})
	}
	return out
}
