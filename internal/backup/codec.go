// Package backup serializes engine state to the canonical JSON backup
// document and rebuilds state from either that document or the lighter
// import document. Restore is all-or-nothing; import commits journal by
// journal with partial success.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kanriworks/ledger/internal/ledger"
	"github.com/kanriworks/ledger/internal/meta"
)

const dateLayout = "2006-01-02"

// Version identifies the backup document schema.
const Version = 1

// Document is the full-fidelity snapshot of engine state. Re-importing
// it reproduces an equivalent engine.
type Document struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Accounts   []AccountRecord   `json:"accounts"`
	Divisions  []DivisionRecord  `json:"divisions"`
	Journals   []JournalRecord   `json:"journals"`
	UnitOwners []UnitOwnerRecord `json:"unitOwners"`
	Vendors    []VendorRecord    `json:"vendors"`
}

// ImportDocument is the partial-update shape: journals to create (each
// auto-posted), optional opening balances and master data.
type ImportDocument struct {
	ClearExisting   bool              `json:"clearExisting"`
	Journals        []ImportJournal   `json:"journals"`
	UnitOwners      []UnitOwnerRecord `json:"unitOwners,omitempty"`
	Vendors         []VendorRecord    `json:"vendors,omitempty"`
	OpeningBalances *OpeningBalances  `json:"openingBalances,omitempty"`
}

// AccountRecord mirrors one chart-of-accounts node.
type AccountRecord struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ShortName  string `json:"shortName,omitempty"`
	Class      string `json:"class"`
	Level      int    `json:"level"`
	ParentCode string `json:"parentCode,omitempty"`
	Postable   bool   `json:"postable"`
	Division   string `json:"division"`
}

// DivisionRecord mirrors one accounting division.
type DivisionRecord struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Active          bool   `json:"active"`
	FiscalYearStart string `json:"fiscalYearStart"`
	FiscalYearEnd   string `json:"fiscalYearEnd"`
}

// JournalRecord is one stored journal with its full lifecycle state.
type JournalRecord struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Reference   string            `json:"reference,omitempty"`
	Division    string            `json:"division,omitempty"`
	Status      string            `json:"status"`
	Details     []DetailRecord    `json:"details"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// DetailRecord is the shared line-item sub-schema of both document
// shapes. Exactly one of the two amounts is populated.
type DetailRecord struct {
	AccountCode  string  `json:"accountCode"`
	DebitAmount  float64 `json:"debitAmount,omitempty"`
	CreditAmount float64 `json:"creditAmount,omitempty"`
	Note         string  `json:"note,omitempty"`
}

// ImportJournal is one journal of the import shape, without lifecycle
// state: import always creates and auto-posts.
type ImportJournal struct {
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Reference   string            `json:"reference,omitempty"`
	Division    string            `json:"division,omitempty"`
	Details     []DetailRecord    `json:"details"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// OpeningBalances seeds starting balances as of a date. The entries are
// applied as synthetic balanced journals, one per division.
type OpeningBalances struct {
	Date    string         `json:"date"`
	Entries []DetailRecord `json:"entries"`
}

// UnitOwnerRecord mirrors one unit owner master record.
type UnitOwnerRecord struct {
	UnitNumber    string  `json:"unitNumber"`
	OwnerName     string  `json:"ownerName"`
	Floor         int     `json:"floor,omitempty"`
	Area          float64 `json:"area,omitempty"`
	ManagementFee int64   `json:"managementFee,omitempty"`
	RepairReserve int64   `json:"repairReserve,omitempty"`
}

// VendorRecord mirrors one vendor master record.
type VendorRecord struct {
	Code     string `json:"vendorCode"`
	Name     string `json:"vendorName"`
	Category string `json:"category,omitempty"`
}

// DecodeDocument reads a backup document from r.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode backup document: %w", err)
	}
	return doc, nil
}

// DecodeImport reads an import document from r.
func DecodeImport(r io.Reader) (ImportDocument, error) {
	var doc ImportDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return ImportDocument{}, fmt.Errorf("decode import document: %w", err)
	}
	return doc, nil
}

// Encode writes the document as indented JSON.
func (d Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// journalRecord flattens a stored journal into the wire shape.
func journalRecord(j ledger.Journal) JournalRecord {
	rec := JournalRecord{
		ID:          j.ID.String(),
		Date:        j.Date.Format(dateLayout),
		Description: j.Description,
		Reference:   j.Reference,
		Division:    string(j.Division),
		Status:      string(j.Status),
		Details:     make([]DetailRecord, 0, len(j.Details)),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if len(j.Metadata) > 0 {
		rec.Metadata = map[string]string(j.Metadata.Clone())
	}
	for _, d := range j.Details {
		units, _ := d.Amount.MinorUnits()
		dr := DetailRecord{AccountCode: d.AccountCode, Note: d.Note}
		switch d.Side {
		case ledger.SideDebit:
			dr.DebitAmount = float64(units)
		case ledger.SideCredit:
			dr.CreditAmount = float64(units)
		}
		rec.Details = append(rec.Details, dr)
	}
	return rec
}

// parseJournal rebuilds a stored journal from its wire shape. Any
// malformed field fails the whole record.
func parseJournal(rec JournalRecord) (ledger.Journal, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return ledger.Journal{}, fmt.Errorf("journal id %q: %w", rec.ID, err)
	}
	date, err := time.ParseInLocation(dateLayout, rec.Date, time.UTC)
	if err != nil {
		return ledger.Journal{}, fmt.Errorf("journal %s date %q: %w", rec.ID, rec.Date, err)
	}
	status := ledger.JournalStatus(rec.Status)
	if !status.Valid() {
		return ledger.Journal{}, fmt.Errorf("journal %s: unknown status %q", rec.ID, rec.Status)
	}
	if rec.Description == "" {
		return ledger.Journal{}, fmt.Errorf("journal %s: missing description", rec.ID)
	}
	if len(rec.Details) == 0 {
		return ledger.Journal{}, fmt.Errorf("journal %s: no details", rec.ID)
	}
	j := ledger.Journal{
		ID:          id,
		Date:        date,
		Description: rec.Description,
		Reference:   rec.Reference,
		Division:    ledger.DivisionCode(rec.Division),
		Status:      status,
		Details:     make([]ledger.JournalDetail, 0, len(rec.Details)),
		Metadata:    meta.New(rec.Metadata),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	for i, dr := range rec.Details {
		detail, err := parseDetail(dr)
		if err != nil {
			return ledger.Journal{}, fmt.Errorf("journal %s line %d: %w", rec.ID, i+1, err)
		}
		j.Details = append(j.Details, detail)
	}
	return j, nil
}

func parseDetail(dr DetailRecord) (ledger.JournalDetail, error) {
	if dr.DebitAmount < 0 || dr.CreditAmount < 0 {
		return ledger.JournalDetail{}, fmt.Errorf("account %s: negative amount", dr.AccountCode)
	}
	hasDebit := dr.DebitAmount != 0
	hasCredit := dr.CreditAmount != 0
	if hasDebit == hasCredit {
		return ledger.JournalDetail{}, fmt.Errorf("account %s: exactly one side must be set", dr.AccountCode)
	}
	side, amount := ledger.SideDebit, dr.DebitAmount
	if hasCredit {
		side, amount = ledger.SideCredit, dr.CreditAmount
	}
	return ledger.JournalDetail{
		AccountCode: dr.AccountCode,
		Side:        side,
		Amount:      ledger.Yen(int64(amount)),
		Note:        dr.Note,
	}, nil
}
