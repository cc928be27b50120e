package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/kanriworks/ledger/internal/meta"
)

// Currency is the single currency the association's books are kept in.
// JPY has no minor unit, so minor units and yen are the same number.
const Currency = "JPY"

// MaxDetails caps the number of line items a single journal may carry.
const MaxDetails = 100

// Side represents the accounting position of a journal detail.
type Side string

const (
	// SideDebit records a value on the debit side of an account.
	SideDebit Side = "debit"
	// SideCredit records a value on the credit side of an account.
	SideCredit Side = "credit"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// Class enumerates the broad classification of an account in the chart.
type Class string

const (
	// ClassAsset increases on the debit side and holds association resources.
	ClassAsset Class = "asset"
	// ClassLiability increases on the credit side and tracks obligations.
	ClassLiability Class = "liability"
	// ClassEquity captures accumulated surplus carried across periods.
	ClassEquity Class = "equity"
	// ClassRevenue represents inflows such as management fees and reserves.
	ClassRevenue Class = "revenue"
	// ClassExpense represents outflows such as maintenance and utilities.
	ClassExpense Class = "expense"
)

// Valid reports whether c is one of the five account classes.
func (c Class) Valid() bool {
	switch c {
	case ClassAsset, ClassLiability, ClassEquity, ClassRevenue, ClassExpense:
		return true
	}
	return false
}

// NormalSide is the side on which an account of this class naturally
// increases. Assets and expenses are debit-normal, everything else is
// credit-normal.
func (c Class) NormalSide() Side {
	switch c {
	case ClassAsset, ClassExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// DivisionCode identifies an accounting division (fund).
type DivisionCode string

const (
	// DivisionKanri is the management fund (管理費会計).
	DivisionKanri DivisionCode = "KANRI"
	// DivisionShuzen is the repair reserve fund (修繕積立金会計).
	DivisionShuzen DivisionCode = "SHUZEN"
	// DivisionParking is the parking lot fund (駐車場会計).
	DivisionParking DivisionCode = "PARKING"
	// DivisionSpecial is the special purpose fund (特別会計).
	DivisionSpecial DivisionCode = "SPECIAL"
	// DivisionCommon marks accounts usable under any division.
	DivisionCommon DivisionCode = "COMMON"
)

// Account is one node of the chart of accounts. The chart is loaded once
// from static master data and never mutated afterwards.
type Account struct {
	// Code is the 4-digit account code, unique across the chart.
	Code string
	Name string
	// ShortName is the compact label used in report columns.
	ShortName string
	Class     Class
	// Level is the hierarchy depth, 1 for roots. A child's level is always
	// its parent's level + 1.
	Level int
	// ParentCode is empty for root accounts.
	ParentCode string
	// Postable is true only for leaf accounts journals may reference
	// directly; aggregation accounts are never postable.
	Postable bool
	// Division is the owning division, or DivisionCommon when the account
	// may be used under any division.
	Division DivisionCode
}

// NormalSide returns the account's natural increasing side.
func (a Account) NormalSide() Side { return a.Class.NormalSide() }

// MonthDay is a recurring calendar day used for fiscal year boundaries.
type MonthDay struct {
	Month time.Month
	Day   int
}

// DivisionDefaults binds a division to its designated accounts.
type DivisionDefaults struct {
	Cash    string
	Bank    string
	Income  string
	Expense string
	// Surplus is the equity account opening-balance imports are balanced
	// against when an entry set does not balance on its own.
	Surplus string
}

// Division is one accounting sub-ledger (fund) with its own scope of
// permissible accounts and transfer policy. Static, loaded once.
type Division struct {
	Code            DivisionCode
	Name            string
	Active          bool
	FiscalYearStart MonthDay
	FiscalYearEnd   MonthDay
	Defaults        DivisionDefaults
}

// JournalStatus is the lifecycle state of a journal.
type JournalStatus string

const (
	StatusDraft     JournalStatus = "draft"
	StatusSubmitted JournalStatus = "submitted"
	StatusApproved  JournalStatus = "approved"
	// StatusPosted is terminal: a posted journal is immutable and cannot
	// be deleted.
	StatusPosted JournalStatus = "posted"
)

// Valid reports whether s is a known lifecycle status.
func (s JournalStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusPosted:
		return true
	}
	return false
}

// JournalDetail is a single line item of a journal. Exactly one side is
// populated; Amount is always non-negative whole yen.
type JournalDetail struct {
	AccountCode string
	Side        Side
	Amount      money.Amount
	// Note is an optional line-level remark or auxiliary reference.
	Note string
}

// Journal is one double-entry transaction moving through the approval
// lifecycle. Once posted it never changes again.
type Journal struct {
	ID          uuid.UUID
	Date        time.Time
	Description string
	Reference   string
	// Division the journal belongs to. Set explicitly by the caller or
	// inferred from the touched accounts during validation.
	Division DivisionCode
	Status   JournalStatus
	Details  []JournalDetail
	// Metadata holds additional key-value attributes (e.g. auxiliary codes).
	Metadata  meta.Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Totals returns the journal's debit and credit sums in yen.
func (j Journal) Totals() (debit, credit int64) {
	for _, d := range j.Details {
		units, _ := d.Amount.MinorUnits()
		switch d.Side {
		case SideDebit:
			debit += units
		case SideCredit:
			credit += units
		}
	}
	return debit, credit
}

// Balanced reports whether total debits equal total credits.
func (j Journal) Balanced() bool {
	d, c := j.Totals()
	return d == c
}

// OpeningBalance is a single-sided amount seeding an account's starting
// balance. A set of entries is applied as one synthetic balanced journal.
type OpeningBalance struct {
	AccountCode string
	Side        Side
	Amount      money.Amount
}

// UnitOwner is auxiliary master data for one unit of the building.
type UnitOwner struct {
	UnitNumber    string
	OwnerName     string
	Floor         int
	Area          float64
	ManagementFee int64
	RepairReserve int64
}

// Vendor is auxiliary master data for a supplier or contractor.
type Vendor struct {
	Code     string
	Name     string
	Category string
}

// Yen builds a JPY amount from whole yen. It panics only on amounts far
// outside any plausible bookkeeping range.
func Yen(n int64) money.Amount {
	a, err := money.NewAmountFromMinorUnits(Currency, n)
	if err != nil {
		panic(err)
	}
	return a
}
