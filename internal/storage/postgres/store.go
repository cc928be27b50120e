package postgres

// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the services
// and the backup codec. Migrations that create the expected schema live
// under db/migrations; this package only maps between the domain
// entities and SQL rows.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
	"github.com/kanriworks/ledger/internal/meta"
)

// Store holds a pgx connection pool. All methods are safe for
// concurrent use; callers serialize mutations as the engine requires.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Journal reads ---

// Journals returns all journals ordered by (date, id) with details
// populated.
func (s *Store) Journals(ctx context.Context) ([]ledger.Journal, error) {
	rows, err := s.pool.Query(ctx, `
        select id, date, description, reference, division, status, metadata, created_at, updated_at
        from journals
        order by date asc, id asc
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	journals := make([]ledger.Journal, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, j)
		ids = append(ids, j.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(journals) == 0 {
		return journals, nil
	}
	detailRows, err := s.pool.Query(ctx, `
        select journal_id, account_code, side, amount_yen, note
        from journal_details
        where journal_id = any($1)
        order by journal_id, line_no
    `, ids)
	if err != nil {
		return nil, err
	}
	defer detailRows.Close()
	idx := make(map[uuid.UUID]*ledger.Journal, len(journals))
	for i := range journals {
		idx[journals[i].ID] = &journals[i]
	}
	for detailRows.Next() {
		var journalID uuid.UUID
		var d ledger.JournalDetail
		var yen int64
		if err := detailRows.Scan(&journalID, &d.AccountCode, &d.Side, &yen, &d.Note); err != nil {
			return nil, err
		}
		d.Amount = ledger.Yen(yen)
		if j := idx[journalID]; j != nil {
			j.Details = append(j.Details, d)
		}
	}
	return journals, detailRows.Err()
}

// JournalByID returns a single journal with its details.
func (s *Store) JournalByID(ctx context.Context, id uuid.UUID) (ledger.Journal, error) {
	row := s.pool.QueryRow(ctx, `
        select id, date, description, reference, division, status, metadata, created_at, updated_at
        from journals
        where id = $1
    `, id)
	j, err := scanJournal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Journal{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Journal{}, err
	}
	rows, err := s.pool.Query(ctx, `
        select account_code, side, amount_yen, note
        from journal_details
        where journal_id = $1
        order by line_no
    `, id)
	if err != nil {
		return ledger.Journal{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var d ledger.JournalDetail
		var yen int64
		if err := rows.Scan(&d.AccountCode, &d.Side, &yen, &d.Note); err != nil {
			return ledger.Journal{}, err
		}
		d.Amount = ledger.Yen(yen)
		j.Details = append(j.Details, d)
	}
	return j, rows.Err()
}

// --- Journal writes ---

// CreateJournal inserts a journal and its details in one transaction.
func (s *Store) CreateJournal(ctx context.Context, j ledger.Journal) (ledger.Journal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Journal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := insertJournal(ctx, tx, j); err != nil {
		return ledger.Journal{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Journal{}, err
	}
	return j, nil
}

// UpdateJournal replaces a journal's header and details.
func (s *Store) UpdateJournal(ctx context.Context, j ledger.Journal) (ledger.Journal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Journal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	md, _ := j.Metadata.MarshalStableJSON()
	ct, err := tx.Exec(ctx, `
        update journals
        set date=$1, description=$2, reference=$3, division=$4, status=$5, metadata=$6, updated_at=$7
        where id=$8
    `, j.Date, j.Description, j.Reference, string(j.Division), string(j.Status), md, j.UpdatedAt, j.ID)
	if err != nil {
		return ledger.Journal{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.Journal{}, errs.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `delete from journal_details where journal_id=$1`, j.ID); err != nil {
		return ledger.Journal{}, err
	}
	if err := insertDetails(ctx, tx, j); err != nil {
		return ledger.Journal{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Journal{}, err
	}
	return j, nil
}

// DeleteJournal removes a journal; details cascade.
func (s *Store) DeleteJournal(ctx context.Context, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from journals where id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ReplaceJournals swaps the whole journal collection in one
// transaction, used by backup restore.
func (s *Store) ReplaceJournals(ctx context.Context, journals []ledger.Journal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `delete from journals`); err != nil {
		return err
	}
	for _, j := range journals {
		if err := insertJournal(ctx, tx, j); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ClearJournals drops all journals and idempotency keys.
func (s *Store) ClearJournals(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `delete from journals`)
	return err
}

// --- Auxiliary masters ---

// UnitOwners returns unit owner records ordered by unit number.
func (s *Store) UnitOwners(ctx context.Context) ([]ledger.UnitOwner, error) {
	rows, err := s.pool.Query(ctx, `
        select unit_number, owner_name, floor, area, management_fee, repair_reserve
        from unit_owners
        order by unit_number
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.UnitOwner, 0)
	for rows.Next() {
		var u ledger.UnitOwner
		if err := rows.Scan(&u.UnitNumber, &u.OwnerName, &u.Floor, &u.Area, &u.ManagementFee, &u.RepairReserve); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpsertUnitOwner merges a unit owner record by unit number.
func (s *Store) UpsertUnitOwner(ctx context.Context, u ledger.UnitOwner) error {
	_, err := s.pool.Exec(ctx, `
        insert into unit_owners (unit_number, owner_name, floor, area, management_fee, repair_reserve)
        values ($1,$2,$3,$4,$5,$6)
        on conflict (unit_number) do update
        set owner_name=$2, floor=$3, area=$4, management_fee=$5, repair_reserve=$6
    `, u.UnitNumber, u.OwnerName, u.Floor, u.Area, u.ManagementFee, u.RepairReserve)
	return err
}

// Vendors returns vendor records ordered by code.
func (s *Store) Vendors(ctx context.Context) ([]ledger.Vendor, error) {
	rows, err := s.pool.Query(ctx, `select code, name, category from vendors order by code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Vendor, 0)
	for rows.Next() {
		var v ledger.Vendor
		if err := rows.Scan(&v.Code, &v.Name, &v.Category); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpsertVendor merges a vendor record by code.
func (s *Store) UpsertVendor(ctx context.Context, v ledger.Vendor) error {
	_, err := s.pool.Exec(ctx, `
        insert into vendors (code, name, category)
        values ($1,$2,$3)
        on conflict (code) do update set name=$2, category=$3
    `, v.Code, v.Name, v.Category)
	return err
}

// ClearMasters drops all auxiliary master records.
func (s *Store) ClearMasters(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `delete from unit_owners`); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `delete from vendors`)
	return err
}

// --- Idempotency ---

// ResolveJournalByIdempotencyKey returns the journal previously created
// under key, if any.
func (s *Store) ResolveJournalByIdempotencyKey(ctx context.Context, key string) (ledger.Journal, bool, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `select journal_id from journal_idempotency where key=$1`, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Journal{}, false, nil
	}
	if err != nil {
		return ledger.Journal{}, false, err
	}
	j, err := s.JournalByID(ctx, id)
	if err != nil {
		return ledger.Journal{}, false, err
	}
	return j, true, nil
}

// SaveJournalIdempotencyKey stores a key -> journal mapping. Only the
// first write for a key sticks.
func (s *Store) SaveJournalIdempotencyKey(ctx context.Context, key string, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
        insert into journal_idempotency (key, journal_id)
        values ($1,$2)
        on conflict (key) do nothing
    `, key, id)
	return err
}

// scanJournal reads a journal header row.
func scanJournal(row pgx.Row) (ledger.Journal, error) {
	var j ledger.Journal
	var division, status string
	var mdBytes []byte
	var date time.Time
	if err := row.Scan(&j.ID, &date, &j.Description, &j.Reference, &division, &status, &mdBytes, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return ledger.Journal{}, err
	}
	j.Date = date.UTC()
	j.Division = ledger.DivisionCode(division)
	j.Status = ledger.JournalStatus(status)
	if len(mdBytes) > 0 {
		var m meta.Metadata
		if err := m.UnmarshalJSON(mdBytes); err == nil {
			j.Metadata = m
		}
	}
	return j, nil
}

// insertJournal inserts the header and its details within the provided
// transaction.
func insertJournal(ctx context.Context, tx pgx.Tx, j ledger.Journal) error {
	md, _ := j.Metadata.MarshalStableJSON()
	if _, err := tx.Exec(ctx, `
        insert into journals (id, date, description, reference, division, status, metadata, created_at, updated_at)
        values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `, j.ID, j.Date, j.Description, j.Reference, string(j.Division), string(j.Status), md, j.CreatedAt, j.UpdatedAt); err != nil {
		return err
	}
	return insertDetails(ctx, tx, j)
}

func insertDetails(ctx context.Context, tx pgx.Tx, j ledger.Journal) error {
	for i, d := range j.Details {
		yen, _ := d.Amount.MinorUnits()
		if _, err := tx.Exec(ctx, `
            insert into journal_details (journal_id, line_no, account_code, side, amount_yen, note)
            values ($1,$2,$3,$4,$5,$6)
        `, j.ID, i+1, d.AccountCode, string(d.Side), yen, d.Note); err != nil {
			return fmt.Errorf("insert detail %d: %w", i+1, err)
		}
	}
	return nil
}
