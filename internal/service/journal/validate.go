package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/govalues/decimal"

	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
	"github.com/kanriworks/ledger/internal/meta"
)

// tolerance absorbs float rounding in supplied amounts. Anything beyond
// it is a genuine imbalance.
var tolerance = decimal.MustNew(1, 2) // 0.01

// maxAmount bounds a single line item; amounts at or above it are
// rejected before any decimal arithmetic can overflow.
const maxAmount = 1e14

// Validate checks a proposed journal against the chart of accounts and
// divisional rules and returns either the normalized journal or the full
// ordered list of problems. It accumulates errors rather than stopping at
// the first so the caller can report everything at once. Pure: no state
// is touched.
func (s *service) Validate(in Input) (ledger.Journal, errs.ValidationErrors) {
	var ves errs.ValidationErrors

	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		ves = append(ves, errs.ValidationError{
			Code: errs.CodeInvalidDate, Detail: fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", in.Date),
		})
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		ves = append(ves, errs.ValidationError{
			Code: errs.CodeMissingDescription, Detail: "description is required",
		})
	}

	switch {
	case len(in.Details) == 0:
		ves = append(ves, errs.ValidationError{
			Code: errs.CodeMissingDetails, Detail: "at least one detail line is required",
		})
	case len(in.Details) > ledger.MaxDetails:
		ves = append(ves, errs.ValidationError{
			Code:   errs.CodeTooManyDetails,
			Detail: fmt.Sprintf("%d detail lines exceed the maximum of %d", len(in.Details), ledger.MaxDetails),
		})
	}

	var (
		details     = make([]ledger.JournalDetail, 0, len(in.Details))
		totalDebit  = decimal.Decimal{}
		totalCredit = decimal.Decimal{}
		lineAccount = make([]ledger.Account, len(in.Details))
		resolved    = make([]bool, len(in.Details))
	)
	for i, d := range in.Details {
		line := i + 1
		acc, err := s.dir.Lookup(d.AccountCode)
		if err != nil || !acc.Postable {
			ves = append(ves, errs.ValidationError{
				Code: errs.CodeAccountNotFound, Line: line, AccountCode: d.AccountCode,
				Detail: fmt.Sprintf("account %s not found or not postable", d.AccountCode),
			})
		} else {
			lineAccount[i] = acc
			resolved[i] = true
		}

		debit, errD := decimal.NewFromFloat64(d.Debit)
		credit, errC := decimal.NewFromFloat64(d.Credit)
		if errD != nil || errC != nil || d.Debit >= maxAmount || d.Credit >= maxAmount {
			ves = append(ves, errs.ValidationError{
				Code: errs.CodeNegativeAmount, Line: line, AccountCode: d.AccountCode,
				Detail: "amount out of range",
			})
			continue
		}
		if debit.IsNeg() || credit.IsNeg() {
			ves = append(ves, errs.ValidationError{
				Code: errs.CodeNegativeAmount, Line: line, AccountCode: d.AccountCode,
				Detail: "amounts must not be negative",
			})
			continue
		}

		hasDebit := !debit.IsZero()
		hasCredit := !credit.IsZero()
		if hasDebit == hasCredit {
			ves = append(ves, errs.ValidationError{
				Code: errs.CodeAmbiguousSide, Line: line, AccountCode: d.AccountCode,
				Detail: "exactly one of debit or credit must be set",
			})
			continue
		}

		side := ledger.SideDebit
		amount := debit
		if hasCredit {
			side = ledger.SideCredit
			amount = credit
		}
		if hasDebit {
			totalDebit, _ = totalDebit.Add(debit)
		} else {
			totalCredit, _ = totalCredit.Add(credit)
		}
		yen, _, _ := amount.Round(0).Int64(0)
		details = append(details, ledger.JournalDetail{
			AccountCode: d.AccountCode,
			Side:        side,
			Amount:      ledger.Yen(yen),
			Note:        d.Note,
		})
	}

	div, divVes := s.resolveDivision(in.Division, lineAccount, resolved)
	ves = append(ves, divVes...)

	diff, _ := totalDebit.Sub(totalCredit)
	if diff.Abs().Cmp(tolerance) > 0 {
		debitYen, _, _ := totalDebit.Round(0).Int64(0)
		creditYen, _, _ := totalCredit.Round(0).Int64(0)
		ves = append(ves, errs.ValidationError{
			Code: errs.CodeNotBalanced, Debit: debitYen, Credit: creditYen,
			Detail: fmt.Sprintf("debits (%d) != credits (%d)", debitYen, creditYen),
		})
	}

	if len(ves) > 0 {
		return ledger.Journal{}, ves
	}
	return ledger.Journal{
		Date:        date,
		Description: desc,
		Reference:   strings.TrimSpace(in.Reference),
		Division:    div,
		Details:     details,
		Metadata:    meta.New(in.Metadata),
	}, nil
}

// resolveDivision applies the divisional consistency rules: an explicit
// division must admit every touched account; an omitted one is inferred
// as the single non-COMMON division among the touched accounts.
func (s *service) resolveDivision(div ledger.DivisionCode, lineAccount []ledger.Account, resolved []bool) (ledger.DivisionCode, errs.ValidationErrors) {
	var ves errs.ValidationErrors

	if div != "" {
		if !s.reg.Known(div) {
			ves = append(ves, errs.ValidationError{
				Code: errs.CodeDivisionConflict, Detail: fmt.Sprintf("unknown division %s", div),
			})
			return div, ves
		}
		for i, ok := range resolved {
			if !ok {
				continue
			}
			acc := lineAccount[i]
			if !s.reg.CanUseAccount(div, acc.Division) {
				ves = append(ves, errs.ValidationError{
					Code: errs.CodeDivisionConflict, Line: i + 1, AccountCode: acc.Code,
					Detail: fmt.Sprintf("account %s belongs to %s, not usable under %s", acc.Code, acc.Division, div),
				})
			}
		}
		return div, ves
	}

	if s.requireDivision {
		ves = append(ves, errs.ValidationError{
			Code: errs.CodeMissingDivision, Detail: "division is required",
		})
		return div, ves
	}

	seen := make(map[ledger.DivisionCode]struct{})
	order := make([]ledger.DivisionCode, 0, 2)
	for i, ok := range resolved {
		if !ok {
			continue
		}
		dc := lineAccount[i].Division
		if dc == ledger.DivisionCommon {
			continue
		}
		if _, dup := seen[dc]; !dup {
			seen[dc] = struct{}{}
			order = append(order, dc)
		}
	}
	switch len(order) {
	case 0:
		return ledger.DivisionCommon, ves
	case 1:
		return order[0], ves
	default:
		names := make([]string, len(order))
		for i, dc := range order {
			names[i] = string(dc)
		}
		ves = append(ves, errs.ValidationError{
			Code:   errs.CodeDivisionConflict,
			Detail: "accounts from mutually exclusive divisions mixed: " + strings.Join(names, ", "),
		})
		return "", ves
	}
}
