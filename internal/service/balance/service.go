// Package balance folds posted journals into per-account balances and
// materializes opening-balance entries for a new period. Pure reads over
// already-validated, already-posted data; there is no partial-failure
// mode here.
package balance

import (
	"context"
	"time"

	"github.com/govalues/money"

	"github.com/kanriworks/ledger/internal/coa"
	"github.com/kanriworks/ledger/internal/ledger"
)

// Repo defines the read operations needed by the service.
type Repo interface {
	Journals(ctx context.Context) ([]ledger.Journal, error)
}

// Service answers balance queries and exports opening balances.
type Service interface {
	// BalanceOf returns the signed balance of one account: positive when
	// the account carries a balance on its normal side.
	BalanceOf(ctx context.Context, accountCode string, asOf *time.Time) (money.Amount, error)
	// TrialBalance returns raw net amounts (debits minus credits) per
	// postable account touched by posted journals.
	TrialBalance(ctx context.Context, asOf *time.Time) (map[string]money.Amount, error)
	// OpeningBalances returns one single-sided entry per account with a
	// nonzero balance as of date. The entry set balances by construction.
	OpeningBalances(ctx context.Context, date time.Time) ([]ledger.OpeningBalance, error)
}

type service struct {
	repo Repo
	dir  *coa.Directory
}

func New(repo Repo, dir *coa.Directory) Service { return &service{repo: repo, dir: dir} }

// rawNet folds posted journals into debit-minus-credit yen per account,
// restricted to dates <= asOf when provided.
func (s *service) rawNet(ctx context.Context, asOf *time.Time) (map[string]int64, error) {
	journals, err := s.repo.Journals(ctx)
	if err != nil {
		return nil, err
	}
	net := make(map[string]int64)
	for _, j := range journals {
		if j.Status != ledger.StatusPosted {
			continue
		}
		if asOf != nil && j.Date.After(*asOf) {
			continue
		}
		for _, d := range j.Details {
			units, _ := d.Amount.MinorUnits()
			switch d.Side {
			case ledger.SideDebit:
				net[d.AccountCode] += units
			case ledger.SideCredit:
				net[d.AccountCode] -= units
			}
		}
	}
	return net, nil
}

func (s *service) BalanceOf(ctx context.Context, accountCode string, asOf *time.Time) (money.Amount, error) {
	acc, err := s.dir.Lookup(accountCode)
	if err != nil {
		return money.Amount{}, err
	}
	net, err := s.rawNet(ctx, asOf)
	if err != nil {
		return money.Amount{}, err
	}
	n := net[accountCode]
	if acc.NormalSide() == ledger.SideCredit {
		n = -n
	}
	return ledger.Yen(n), nil
}

func (s *service) TrialBalance(ctx context.Context, asOf *time.Time) (map[string]money.Amount, error) {
	net, err := s.rawNet(ctx, asOf)
	if err != nil {
		return nil, err
	}
	out := make(map[string]money.Amount, len(net))
	for c, n := range net {
		out[c] = ledger.Yen(n)
	}
	return out, nil
}

func (s *service) OpeningBalances(ctx context.Context, date time.Time) ([]ledger.OpeningBalance, error) {
	net, err := s.rawNet(ctx, &date)
	if err != nil {
		return nil, err
	}
	// Walk the chart in code order so the export is deterministic.
	out := make([]ledger.OpeningBalance, 0, len(net))
	for _, acc := range s.dir.All() {
		n, ok := net[acc.Code]
		if !ok || n == 0 {
			continue
		}
		side := ledger.SideDebit
		if n < 0 {
			side = ledger.SideCredit
			n = -n
		}
		out = append(out, ledger.OpeningBalance{AccountCode: acc.Code, Side: side, Amount: ledger.Yen(n)})
	}
	return out, nil
}
