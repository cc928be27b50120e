package ledger

import "testing"

func TestTransitions(t *testing.T) {
	cases := []struct {
		from   JournalStatus
		action Action
		to     JournalStatus
		ok     bool
	}{
		{StatusDraft, ActionSubmit, StatusSubmitted, true},
		{StatusDraft, ActionPost, StatusPosted, true},
		{StatusDraft, ActionApprove, "", false},
		{StatusDraft, ActionRevert, "", false},
		{StatusSubmitted, ActionApprove, StatusApproved, true},
		{StatusSubmitted, ActionRevert, StatusDraft, true},
		{StatusSubmitted, ActionPost, "", false},
		{StatusApproved, ActionPost, StatusPosted, true},
		{StatusApproved, ActionRevert, StatusDraft, true},
		{StatusApproved, ActionSubmit, "", false},
		{StatusPosted, ActionSubmit, "", false},
		{StatusPosted, ActionApprove, "", false},
		{StatusPosted, ActionPost, "", false},
		{StatusPosted, ActionRevert, "", false},
	}
	for _, c := range cases {
		to, ok := c.from.Next(c.action)
		if ok != c.ok || (ok && to != c.to) {
			t.Errorf("%s.Next(%s) = (%s, %v), want (%s, %v)", c.from, c.action, to, ok, c.to, c.ok)
		}
	}
}

func TestNormalSide(t *testing.T) {
	debitNormal := []Class{ClassAsset, ClassExpense}
	for _, c := range debitNormal {
		if c.NormalSide() != SideDebit {
			t.Errorf("%s should be debit-normal", c)
		}
	}
	creditNormal := []Class{ClassLiability, ClassEquity, ClassRevenue}
	for _, c := range creditNormal {
		if c.NormalSide() != SideCredit {
			t.Errorf("%s should be credit-normal", c)
		}
	}
}

func TestJournalTotals(t *testing.T) {
	j := Journal{Details: []JournalDetail{
		{AccountCode: "1101", Side: SideDebit, Amount: Yen(1000)},
		{AccountCode: "1102", Side: SideDebit, Amount: Yen(500)},
		{AccountCode: "4111", Side: SideCredit, Amount: Yen(1500)},
	}}
	d, c := j.Totals()
	if d != 1500 || c != 1500 {
		t.Fatalf("Totals() = (%d, %d), want (1500, 1500)", d, c)
	}
	if !j.Balanced() {
		t.Fatal("journal should be balanced")
	}
	j.Details[0].Amount = Yen(999)
	if j.Balanced() {
		t.Fatal("journal should not be balanced")
	}
}
