// Package division holds the registry of accounting divisions (funds) and
// answers the two questions the rest of the engine asks of it: may this
// account be used under this division, and may funds move between two
// divisions.
package division

import (
	"fmt"

	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
)

// Registry is the read-only set of division masters.
type Registry struct {
	byCode map[ledger.DivisionCode]ledger.Division
	order  []ledger.DivisionCode
}

// New validates the division masters and builds the registry.
func New(divisions []ledger.Division) (*Registry, error) {
	r := &Registry{
		byCode: make(map[ledger.DivisionCode]ledger.Division, len(divisions)),
		order:  make([]ledger.DivisionCode, 0, len(divisions)),
	}
	for _, d := range divisions {
		if d.Code == "" {
			return nil, fmt.Errorf("%w: division with empty code", errs.ErrInvalid)
		}
		if _, dup := r.byCode[d.Code]; dup {
			return nil, fmt.Errorf("%w: division %s declared twice", errs.ErrInvalid, d.Code)
		}
		r.byCode[d.Code] = d
		r.order = append(r.order, d.Code)
	}
	return r, nil
}

// Lookup returns the division for code, or errs.ErrNotFound.
func (r *Registry) Lookup(divisionCode ledger.DivisionCode) (ledger.Division, error) {
	d, ok := r.byCode[divisionCode]
	if !ok {
		return ledger.Division{}, fmt.Errorf("division %s: %w", divisionCode, errs.ErrNotFound)
	}
	return d, nil
}

// Known reports whether code is a registered division.
func (r *Registry) Known(divisionCode ledger.DivisionCode) bool {
	_, ok := r.byCode[divisionCode]
	return ok
}

// IsActive reports whether code is registered and active.
func (r *Registry) IsActive(divisionCode ledger.DivisionCode) bool {
	d, ok := r.byCode[divisionCode]
	return ok && d.Active
}

// CanUseAccount reports whether an account owned by accountDivision may
// appear on a journal belonging to journalDivision: the codes must match,
// or either side must be COMMON.
func (r *Registry) CanUseAccount(journalDivision, accountDivision ledger.DivisionCode) bool {
	if journalDivision == accountDivision {
		return true
	}
	return journalDivision == ledger.DivisionCommon || accountDivision == ledger.DivisionCommon
}

// CanTransfer reports whether funds may move from one division to another.
// The policy is fixed: management money may be shifted into the repair
// reserve, but the reverse needs a general-meeting resolution outside the
// books, so SHUZEN->KANRI (and every other cross-division pair) is false.
func (r *Registry) CanTransfer(from, to ledger.DivisionCode) bool {
	if from == to {
		return true
	}
	if from == ledger.DivisionCommon || to == ledger.DivisionCommon {
		return true
	}
	if from == ledger.DivisionKanri && to == ledger.DivisionShuzen {
		return true
	}
	return false
}

// Codes returns the registered division codes in declaration order.
func (r *Registry) Codes() []ledger.DivisionCode {
	out := make([]ledger.DivisionCode, len(r.order))
	copy(out, r.order)
	return out
}

// All returns the division masters in declaration order.
func (r *Registry) All() []ledger.Division {
	out := make([]ledger.Division, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.byCode[c])
	}
	return out
}
