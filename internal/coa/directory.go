// Package coa builds the account directory: an immutable, indexed view of
// the chart of accounts. The hierarchy and indexes are computed once at
// construction, never per query.
package coa

import (
	"fmt"
	"sort"

	"github.com/kanriworks/ledger/internal/code"
	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
)

// Directory is the read-only chart of accounts with parent/child indexes.
type Directory struct {
	byCode   map[string]ledger.Account
	children map[string][]string
	order    []string
}

// New validates the chart and builds the directory. Any inconsistency is
// fatal: duplicate codes, dangling parents, broken level chains, postable
// aggregation accounts, or accounts owned by an unknown division.
func New(accounts []ledger.Account, divisionCodes []ledger.DivisionCode) (*Directory, error) {
	known := make(map[ledger.DivisionCode]struct{}, len(divisionCodes))
	for _, c := range divisionCodes {
		known[c] = struct{}{}
	}
	known[ledger.DivisionCommon] = struct{}{}

	d := &Directory{
		byCode:   make(map[string]ledger.Account, len(accounts)),
		children: make(map[string][]string),
		order:    make([]string, 0, len(accounts)),
	}
	for _, a := range accounts {
		if !code.IsAccountCode(a.Code) {
			return nil, fmt.Errorf("%w: account %q is not a 4-digit code", errs.ErrInvalid, a.Code)
		}
		if !a.Class.Valid() {
			return nil, fmt.Errorf("%w: account %s has unknown class %q", errs.ErrInvalid, a.Code, a.Class)
		}
		if _, dup := d.byCode[a.Code]; dup {
			return nil, fmt.Errorf("%w: %s", errs.ErrDuplicateCode, a.Code)
		}
		if _, ok := known[a.Division]; !ok {
			return nil, fmt.Errorf("%w: account %s belongs to %q", errs.ErrUnknownDivision, a.Code, a.Division)
		}
		d.byCode[a.Code] = a
		d.order = append(d.order, a.Code)
	}

	for _, c := range d.order {
		a := d.byCode[c]
		if a.ParentCode == "" {
			if a.Level != 1 {
				return nil, fmt.Errorf("%w: root account %s has level %d", errs.ErrBadLevel, a.Code, a.Level)
			}
			continue
		}
		parent, ok := d.byCode[a.ParentCode]
		if !ok {
			return nil, fmt.Errorf("%w: account %s references %s", errs.ErrDanglingParent, a.Code, a.ParentCode)
		}
		if a.Level != parent.Level+1 {
			return nil, fmt.Errorf("%w: account %s has level %d under parent level %d", errs.ErrBadLevel, a.Code, a.Level, parent.Level)
		}
		d.children[a.ParentCode] = append(d.children[a.ParentCode], a.Code)
	}

	// An account with children is never postable.
	for parent := range d.children {
		sort.Strings(d.children[parent])
		if d.byCode[parent].Postable {
			return nil, fmt.Errorf("%w: account %s is postable but has children", errs.ErrInvalid, parent)
		}
	}
	sort.Strings(d.order)
	return d, nil
}

// Lookup returns the account for code, or errs.ErrNotFound.
func (d *Directory) Lookup(accountCode string) (ledger.Account, error) {
	a, ok := d.byCode[accountCode]
	if !ok {
		return ledger.Account{}, fmt.Errorf("account %s: %w", accountCode, errs.ErrNotFound)
	}
	return a, nil
}

// IsPostable reports whether code resolves to a postable account.
func (d *Directory) IsPostable(accountCode string) bool {
	a, ok := d.byCode[accountCode]
	return ok && a.Postable
}

// Children returns the direct children of code ordered by code.
func (d *Directory) Children(accountCode string) []ledger.Account {
	codes := d.children[accountCode]
	out := make([]ledger.Account, 0, len(codes))
	for _, c := range codes {
		out = append(out, d.byCode[c])
	}
	return out
}

// Ancestors returns the path from the root down to and including code.
func (d *Directory) Ancestors(accountCode string) ([]ledger.Account, error) {
	a, err := d.Lookup(accountCode)
	if err != nil {
		return nil, err
	}
	path := []ledger.Account{a}
	for a.ParentCode != "" {
		a = d.byCode[a.ParentCode]
		path = append(path, a)
	}
	// reverse to root-first order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// All returns every account ordered by code.
func (d *Directory) All() []ledger.Account {
	out := make([]ledger.Account, 0, len(d.order))
	for _, c := range d.order {
		out = append(out, d.byCode[c])
	}
	return out
}

// Len returns the number of accounts in the chart.
func (d *Directory) Len() int { return len(d.order) }
