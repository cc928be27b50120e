package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kanriworks/ledger/internal/backup"
	"github.com/kanriworks/ledger/internal/coa"
	"github.com/kanriworks/ledger/internal/dictionary"
	"github.com/kanriworks/ledger/internal/division"
	"github.com/kanriworks/ledger/internal/service/balance"
	"github.com/kanriworks/ledger/internal/service/journal"
	"github.com/kanriworks/ledger/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type errResp struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details []struct {
		Code        string `json:"code"`
		Line        int    `json:"line"`
		AccountCode string `json:"account_code"`
		Debit       int64  `json:"debit"`
		Credit      int64  `json:"credit"`
	} `json:"details"`
}

type journalResp struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Division string `json:"division"`
	Status   string `json:"status"`
	Details  []struct {
		AccountCode string `json:"accountCode"`
		Side        string `json:"side"`
		Amount      int64  `json:"amount"`
	} `json:"details"`
}

func setup(t *testing.T) http.Handler {
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
	js := journal.New(store, store, dir, reg)
	bs := balance.New(store, dir)
	codec := backup.NewCodec(store, js, dir, reg)
	return New(js, bs, codec, store, store, dir, reg, testLogger()).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func journalBody(debitAcct, creditAcct string, amount float64, autoPost bool) map[string]any {
	return map[string]any{
		"date":        "2024-01-01",
		"description": "テスト仕訳",
		"autoPost":    autoPost,
		"details": []map[string]any{
			{"accountCode": debitAcct, "debitAmount": amount},
			{"accountCode": creditAcct, "creditAmount": amount},
		},
	}
}

func TestPostJournal_AutoPost(t *testing.T) {
	h := setup(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/journals", journalBody("1101", "4111", 1000, true), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var jr journalResp
	if err := json.Unmarshal(rec.Body.Bytes(), &jr); err != nil {
		t.Fatal(err)
	}
	if jr.Status != "posted" || jr.Division != "KANRI" || len(jr.Details) != 2 {
		t.Fatalf("journal = %+v", jr)
	}
}

func TestPostJournal_ValidationErrors(t *testing.T) {
	h := setup(t)
	body := map[string]any{
		"date":        "2024-01-01",
		"description": "テスト仕訳",
		"details": []map[string]any{
			{"accountCode": "9999", "debitAmount": 1000},
			{"accountCode": "4111", "creditAmount": 500},
		},
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/journals", body, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var er errResp
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatal(err)
	}
	if er.Code != "validation_error" {
		t.Fatalf("code = %q", er.Code)
	}
	var sawAccount, sawBalance bool
	for _, d := range er.Details {
		if d.Code == "account_not_found" && d.AccountCode == "9999" {
			sawAccount = true
		}
		if d.Code == "not_balanced" && d.Debit == 1000 && d.Credit == 500 {
			sawBalance = true
		}
	}
	if !sawAccount || !sawBalance {
		t.Fatalf("details = %+v", er.Details)
	}
}

func TestPostJournal_RequiresJSON(t *testing.T) {
	h := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/journals", bytes.NewReader([]byte("date=2024-01-01")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestJournalLifecycle(t *testing.T) {
	h := setup(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/journals", journalBody("1101", "4111", 1000, false), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d: %s", rec.Code, rec.Body.String())
	}
	var jr journalResp
	_ = json.Unmarshal(rec.Body.Bytes(), &jr)
	if jr.Status != "draft" {
		t.Fatalf("status = %q", jr.Status)
	}

	// approve from draft must be rejected with 409
	rec = doJSON(t, h, http.MethodPost, "/v1/journals/"+jr.ID+"/approve", nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("approve draft: expected 409, got %d", rec.Code)
	}

	for _, step := range []struct{ action, want string }{
		{"submit", "submitted"},
		{"approve", "approved"},
		{"post", "posted"},
	} {
		rec = doJSON(t, h, http.MethodPost, "/v1/journals/"+jr.ID+"/"+step.action, nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d: %s", step.action, rec.Code, rec.Body.String())
		}
		var got journalResp
		_ = json.Unmarshal(rec.Body.Bytes(), &got)
		if got.Status != step.want {
			t.Fatalf("%s: status = %q, want %q", step.action, got.Status, step.want)
		}
	}

	// posted journals cannot be deleted or reverted
	rec = doJSON(t, h, http.MethodDelete, "/v1/journals/"+jr.ID, nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete posted: expected 409, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/v1/journals/"+jr.ID+"/revert", nil, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("revert posted: expected 409, got %d", rec.Code)
	}
}

func TestIdempotencyKey(t *testing.T) {
	h := setup(t)
	headers := map[string]string{"Idempotency-Key": "req-1"}
	rec := doJSON(t, h, http.MethodPost, "/v1/journals", journalBody("1101", "4111", 1000, true), headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first: %d", rec.Code)
	}
	var first journalResp
	_ = json.Unmarshal(rec.Body.Bytes(), &first)

	rec = doJSON(t, h, http.MethodPost, "/v1/journals", journalBody("1101", "4111", 1000, true), headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: expected 200, got %d", rec.Code)
	}
	var second journalResp
	_ = json.Unmarshal(rec.Body.Bytes(), &second)
	if first.ID != second.ID {
		t.Fatalf("replay created a new journal: %s vs %s", first.ID, second.ID)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/journals", nil, nil)
	var list struct {
		Items []journalResp `json:"items"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Items) != 1 {
		t.Fatalf("journals = %d, want 1", len(list.Items))
	}
}

func TestAccountsAndDivisions(t *testing.T) {
	h := setup(t)
	rec := doJSON(t, h, http.MethodGet, "/v1/accounts/1101", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get account: %d", rec.Code)
	}
	var acc struct {
		Code       string `json:"code"`
		NormalSide string `json:"normalSide"`
		Postable   bool   `json:"postable"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &acc)
	if acc.NormalSide != "debit" || !acc.Postable {
		t.Fatalf("account = %+v", acc)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/accounts/0000", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown account: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/divisions", nil, nil)
	var divisions []struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &divisions)
	if len(divisions) != 5 {
		t.Fatalf("divisions = %d, want 5", len(divisions))
	}
}

func TestBalancesAndReports(t *testing.T) {
	h := setup(t)
	if rec := doJSON(t, h, http.MethodPost, "/v1/journals", journalBody("1102", "3111", 5000000, true), nil); rec.Code != http.StatusCreated {
		t.Fatalf("seed: %d: %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, h, http.MethodGet, "/v1/accounts/1102/balance", nil, nil)
	var bal struct {
		Balance int64 `json:"balance"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &bal)
	if bal.Balance != 5000000 {
		t.Fatalf("balance = %d", bal.Balance)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/trial-balance", nil, nil)
	var tb struct {
		Accounts []struct {
			AccountCode string `json:"accountCode"`
			Debit       int64  `json:"debit"`
			Credit      int64  `json:"credit"`
		} `json:"accounts"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &tb)
	var debit, credit int64
	for _, row := range tb.Accounts {
		debit += row.Debit
		credit += row.Credit
	}
	if debit != credit || debit != 5000000 {
		t.Fatalf("trial balance totals = (%d, %d)", debit, credit)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/opening-balances?date=2024-04-01", nil, nil)
	var ob struct {
		Entries []struct {
			AccountCode string `json:"accountCode"`
			Amount      int64  `json:"amount"`
		} `json:"entries"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &ob)
	if len(ob.Entries) != 2 {
		t.Fatalf("opening balances = %+v", ob.Entries)
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	h := setup(t)
	if rec := doJSON(t, h, http.MethodPost, "/v1/journals", journalBody("1101", "4111", 30000, true), nil); rec.Code != http.StatusCreated {
		t.Fatalf("seed: %d", rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/v1/backup", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("backup: %d", rec.Code)
	}
	doc, err := backup.DecodeDocument(rec.Body)
	if err != nil {
		t.Fatal(err)
	}

	// Restore into a fresh engine and compare balances over HTTP.
	h2 := setup(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/restore", encodeDoc(t, doc))
	req.Header.Set("Content-Type", "application/json")
	rec2 := httptest.NewRecorder()
	h2.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusNoContent {
		t.Fatalf("restore: %d: %s", rec2.Code, rec2.Body.String())
	}

	for _, target := range []http.Handler{h, h2} {
		r := doJSON(t, target, http.MethodGet, "/v1/accounts/1101/balance", nil, nil)
		var bal struct {
			Balance int64 `json:"balance"`
		}
		_ = json.Unmarshal(r.Body.Bytes(), &bal)
		if bal.Balance != 30000 {
			t.Fatalf("balance = %d, want 30000", bal.Balance)
		}
	}
}

func TestImportEndpoint_PartialSuccess(t *testing.T) {
	h := setup(t)
	body := map[string]any{
		"clearExisting": true,
		"journals": []map[string]any{
			{
				"date": "2024-01-10", "description": "管理費入金",
				"details": []map[string]any{
					{"accountCode": "1102", "debitAmount": 30000},
					{"accountCode": "4111", "creditAmount": 30000},
				},
			},
			{
				"date": "2024-01-11", "description": "壊れた仕訳",
				"details": []map[string]any{
					{"accountCode": "9999", "debitAmount": 100},
					{"accountCode": "4111", "creditAmount": 100},
				},
			},
		},
	}
	rec := doJSON(t, h, http.MethodPost, "/v1/import", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: %d: %s", rec.Code, rec.Body.String())
	}
	var sum struct {
		JournalsCreated int `json:"journalsCreated"`
		JournalsFailed  int `json:"journalsFailed"`
		Failures        []struct {
			Index int `json:"index"`
		} `json:"failures"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &sum)
	if sum.JournalsCreated != 1 || sum.JournalsFailed != 1 || len(sum.Failures) != 1 || sum.Failures[0].Index != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestMastersEndpoints(t *testing.T) {
	h := setup(t)
	rec := doJSON(t, h, http.MethodPut, "/v1/unit-owners/101", map[string]any{
		"ownerName":     "山田太郎",
		"floor":         1,
		"managementFee": 15000,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("put owner: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/unit-owners", nil, nil)
	var owners []struct {
		UnitNumber string `json:"unitNumber"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &owners)
	if len(owners) != 1 {
		t.Fatalf("owners = %d", len(owners))
	}

	rec = doJSON(t, h, http.MethodPut, "/v1/vendors/V001", map[string]any{"vendorName": "東京管理サービス"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("put vendor: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodPut, "/v1/vendors/V002", map[string]any{"category": "cleaning"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("vendor without name: expected 400, got %d", rec.Code)
	}
}

func encodeDoc(t *testing.T, doc backup.Document) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}
