package journal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kanriworks/ledger/internal/coa"
	"github.com/kanriworks/ledger/internal/dictionary"
	"github.com/kanriworks/ledger/internal/division"
	"github.com/kanriworks/ledger/internal/errs"
	"github.com/kanriworks/ledger/internal/ledger"
	"github.com/kanriworks/ledger/internal/storage/memory"
)

func newService(t *testing.T, opts ...Option) (Service, *memory.Store) {
	t.Helper()
	reg, err := division.New(dictionary.Divisions())
	if err != nil {
		t.Fatal(err)
	}
	dir, err := coa.New(dictionary.Chart(), reg.Codes())
	if err != nil {
		t.Fatal(err)
	}
	store := memory.New()
	return New(store, store, dir, reg, opts...), store
}

func simpleInput() Input {
	return Input{
		Date:        "2024-01-01",
		Description: "テスト仕訳",
		Details: []DetailInput{
			{AccountCode: "1101", Debit: 1000},
			{AccountCode: "4111", Credit: 1000},
		},
	}
}

func validationErrors(t *testing.T, err error) errs.ValidationErrors {
	t.Helper()
	var ves errs.ValidationErrors
	if !errors.As(err, &ves) {
		t.Fatalf("want ValidationErrors, got %T: %v", err, err)
	}
	return ves
}

func hasCode(ves errs.ValidationErrors, code string) bool {
	for _, v := range ves {
		if v.Code == code {
			return true
		}
	}
	return false
}

func TestCreate_AutoPost(t *testing.T) {
	svc, _ := newService(t)
	j, err := svc.Create(context.Background(), simpleInput(), true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if j.Status != ledger.StatusPosted {
		t.Fatalf("status = %s, want posted", j.Status)
	}
	// Division inferred from 4111 (KANRI); 1101 is COMMON.
	if j.Division != ledger.DivisionKanri {
		t.Fatalf("division = %s, want KANRI", j.Division)
	}
	if !j.Balanced() {
		t.Fatal("stored journal must balance")
	}
}

func TestCreate_UnknownAccount(t *testing.T) {
	svc, store := newService(t)
	in := simpleInput()
	in.Details[1].AccountCode = "9999"
	_, err := svc.Create(context.Background(), in, true)
	ves := validationErrors(t, err)
	found := false
	for _, v := range ves {
		if v.Code == errs.CodeAccountNotFound && v.AccountCode == "9999" {
			found = true
		}
	}
	if !found {
		t.Fatalf("want account_not_found for 9999, got %v", ves)
	}
	// Nothing stored on failure.
	all, _ := store.Journals(context.Background())
	if len(all) != 0 {
		t.Fatalf("journal stored despite validation failure")
	}
}

func TestCreate_NonPostableAccount(t *testing.T) {
	svc, _ := newService(t)
	in := simpleInput()
	in.Details[0].AccountCode = "1110" // aggregation account, exists but not postable
	_, err := svc.Create(context.Background(), in, false)
	ves := validationErrors(t, err)
	if !hasCode(ves, errs.CodeAccountNotFound) {
		t.Fatalf("want account_not_found, got %v", ves)
	}
}

func TestCreate_NotBalanced(t *testing.T) {
	svc, _ := newService(t)
	in := simpleInput()
	in.Details[1].Credit = 500
	_, err := svc.Create(context.Background(), in, true)
	ves := validationErrors(t, err)
	found := false
	for _, v := range ves {
		if v.Code == errs.CodeNotBalanced && v.Debit == 1000 && v.Credit == 500 {
			found = true
		}
	}
	if !found {
		t.Fatalf("want not_balanced(1000, 500), got %v", ves)
	}
}

func TestValidate_ToleranceAbsorbsRounding(t *testing.T) {
	svc, _ := newService(t)
	in := simpleInput()
	in.Details[0].Debit = 1000.004
	in.Details[1].Credit = 1000.0
	if _, ves := svc.Validate(in); len(ves) != 0 {
		t.Fatalf("0.004 difference should be within tolerance: %v", ves)
	}
	in.Details[0].Debit = 1000.5
	if _, ves := svc.Validate(in); !hasCode(ves, errs.CodeNotBalanced) {
		t.Fatal("0.5 difference should not balance")
	}
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	svc, _ := newService(t)
	in := Input{
		Date:        "not-a-date",
		Description: "   ",
		Details: []DetailInput{
			{AccountCode: "9999", Debit: 100},
			{AccountCode: "1101", Debit: -5},
			{AccountCode: "1102", Debit: 10, Credit: 10},
			{AccountCode: "1103"},
		},
	}
	_, ves := svc.Validate(in)
	for _, code := range []string{
		errs.CodeInvalidDate, errs.CodeMissingDescription,
		errs.CodeAccountNotFound, errs.CodeNegativeAmount,
		errs.CodeAmbiguousSide, errs.CodeNotBalanced,
	} {
		if !hasCode(ves, code) {
			t.Errorf("missing %s in %v", code, ves)
		}
	}
	// Both-sides and no-sides lines are the same failure.
	ambiguous := 0
	for _, v := range ves {
		if v.Code == errs.CodeAmbiguousSide {
			ambiguous++
		}
	}
	if ambiguous != 2 {
		t.Errorf("ambiguous_side count = %d, want 2", ambiguous)
	}
}

func TestValidate_DetailLimits(t *testing.T) {
	svc, _ := newService(t)
	in := Input{Date: "2024-01-01", Description: "x"}
	if _, ves := svc.Validate(in); !hasCode(ves, errs.CodeMissingDetails) {
		t.Fatal("want missing_details")
	}

	in.Details = make([]DetailInput, 0, ledger.MaxDetails+2)
	for i := 0; i < ledger.MaxDetails/2+1; i++ {
		in.Details = append(in.Details,
			DetailInput{AccountCode: "1101", Debit: 10},
			DetailInput{AccountCode: "4111", Credit: 10},
		)
	}
	if _, ves := svc.Validate(in); !hasCode(ves, errs.CodeTooManyDetails) {
		t.Fatal("want too_many_details")
	}
}

func TestValidate_DivisionRules(t *testing.T) {
	svc, _ := newService(t)

	// Mixing KANRI and SHUZEN revenue without COMMON mediation conflicts.
	in := Input{
		Date:        "2024-01-01",
		Description: "混在",
		Details: []DetailInput{
			{AccountCode: "4111", Debit: 100},
			{AccountCode: "4112", Credit: 100},
		},
	}
	if _, ves := svc.Validate(in); !hasCode(ves, errs.CodeDivisionConflict) {
		t.Fatal("mixed divisions should conflict")
	}

	// Explicit division must admit every account.
	in = simpleInput()
	in.Division = ledger.DivisionShuzen
	_, ves := svc.Validate(in)
	if !hasCode(ves, errs.CodeDivisionConflict) {
		t.Fatal("KANRI income under SHUZEN should conflict")
	}

	// COMMON-only accounts infer the COMMON division.
	in = Input{
		Date:        "2024-01-01",
		Description: "利息",
		Details: []DetailInput{
			{AccountCode: "1102", Debit: 10},
			{AccountCode: "4121", Credit: 10},
		},
	}
	j, ves := svc.Validate(in)
	if len(ves) != 0 {
		t.Fatalf("unexpected errors: %v", ves)
	}
	if j.Division != ledger.DivisionCommon {
		t.Fatalf("division = %s, want COMMON", j.Division)
	}

	// Unknown explicit division.
	in.Division = "RINJI"
	if _, ves := svc.Validate(in); !hasCode(ves, errs.CodeDivisionConflict) {
		t.Fatal("unknown division should conflict")
	}
}

func TestValidate_RequireDivision(t *testing.T) {
	svc, _ := newService(t, WithRequireDivision(true))
	in := simpleInput()
	if _, ves := svc.Validate(in); !hasCode(ves, errs.CodeMissingDivision) {
		t.Fatal("want missing_division under strict mode")
	}
	in.Division = ledger.DivisionKanri
	if _, ves := svc.Validate(in); len(ves) != 0 {
		t.Fatalf("explicit division should satisfy strict mode: %v", ves)
	}
}

func TestLifecycle_FullApprovalPath(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	j, err := svc.Create(ctx, simpleInput(), false)
	if err != nil {
		t.Fatal(err)
	}
	if j.Status != ledger.StatusDraft {
		t.Fatalf("status = %s, want draft", j.Status)
	}

	if j, err = svc.Submit(ctx, j.ID); err != nil || j.Status != ledger.StatusSubmitted {
		t.Fatalf("submit: %v, status %s", err, j.Status)
	}
	if j, err = svc.Approve(ctx, j.ID); err != nil || j.Status != ledger.StatusApproved {
		t.Fatalf("approve: %v, status %s", err, j.Status)
	}
	if j, err = svc.Post(ctx, j.ID); err != nil || j.Status != ledger.StatusPosted {
		t.Fatalf("post: %v, status %s", err, j.Status)
	}

	if err := svc.Delete(ctx, j.ID); !errors.Is(err, errs.ErrCannotDeletePosted) {
		t.Fatalf("delete posted: want ErrCannotDeletePosted, got %v", err)
	}
	if _, err := svc.Submit(ctx, j.ID); !errors.Is(err, errs.ErrAlreadyPosted) {
		t.Fatalf("submit posted: want ErrAlreadyPosted, got %v", err)
	}
	if _, err := svc.Revert(ctx, j.ID); !errors.Is(err, errs.ErrAlreadyPosted) {
		t.Fatalf("revert posted: want ErrAlreadyPosted, got %v", err)
	}
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	j, err := svc.Create(ctx, simpleInput(), false)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Approve(ctx, j.ID); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("approve draft: want ErrInvalidTransition, got %v", err)
	}
	var te *errs.TransitionError
	_, err = svc.Revert(ctx, j.ID)
	if !errors.As(err, &te) {
		t.Fatalf("revert draft: want TransitionError, got %v", err)
	}
	if te.Current != "draft" || te.Action != "revert" {
		t.Fatalf("unexpected transition error: %+v", te)
	}
	if !strings.Contains(te.Error(), "draft") {
		t.Fatalf("message should name the current status: %s", te.Error())
	}
}

func TestLifecycle_RevertPaths(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	j, _ := svc.Create(ctx, simpleInput(), false)
	j, _ = svc.Submit(ctx, j.ID)
	if j, _ = svc.Revert(ctx, j.ID); j.Status != ledger.StatusDraft {
		t.Fatalf("submitted revert: status %s", j.Status)
	}

	j2, _ := svc.Create(ctx, simpleInput(), false)
	j2, _ = svc.Submit(ctx, j2.ID)
	j2, _ = svc.Approve(ctx, j2.ID)
	if j2, _ = svc.Revert(ctx, j2.ID); j2.Status != ledger.StatusDraft {
		t.Fatalf("approved revert: status %s", j2.Status)
	}
}

func TestLifecycle_DraftDirectPost(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	j, _ := svc.Create(ctx, simpleInput(), false)
	if j, err := svc.Post(ctx, j.ID); err != nil || j.Status != ledger.StatusPosted {
		t.Fatalf("direct post from draft: %v, status %s", err, j.Status)
	}
}

func TestLifecycle_UnknownID(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDelete_BeforePosting(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	j, _ := svc.Create(ctx, simpleInput(), false)
	j, _ = svc.Submit(ctx, j.ID)
	if err := svc.Delete(ctx, j.ID); err != nil {
		t.Fatalf("delete submitted: %v", err)
	}
	all, _ := store.Journals(ctx)
	if len(all) != 0 {
		t.Fatal("journal still present after delete")
	}
}
