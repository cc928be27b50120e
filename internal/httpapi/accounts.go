package httpapi

import (
	"net/http"
	"sort"
	"time"

	chi "github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := s.dir.All()
	out := make([]accountResponse, 0, len(accounts))
	division := r.URL.Query().Get("division")
	postableOnly := r.URL.Query().Get("postable") == "true"
	for _, a := range accounts {
		if division != "" && string(a.Division) != division {
			continue
		}
		if postableOnly && !a.Postable {
			continue
		}
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.dir.Lookup(chi.URLParam(r, "code"))
	if err != nil {
		notFound(w)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	asOf, asOfRaw, ok := parseAsOf(w, r)
	if !ok {
		return
	}
	amount, err := s.balances.BalanceOf(r.Context(), code, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	units, _ := amount.MinorUnits()
	toJSON(w, http.StatusOK, balanceResponse{AccountCode: code, Balance: units, AsOf: asOfRaw})
}

func (s *Server) listDivisions(w http.ResponseWriter, r *http.Request) {
	divisions := s.reg.All()
	out := make([]divisionResponse, 0, len(divisions))
	for _, d := range divisions {
		out = append(out, divisionResponse{Code: string(d.Code), Name: d.Name, Active: d.Active})
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, asOfRaw, ok := parseAsOf(w, r)
	if !ok {
		return
	}
	net, err := s.balances.TrialBalance(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := trialBalanceResponse{AsOf: asOfRaw, Accounts: make([]trialBalanceRow, 0, len(net))}
	for code, amount := range net {
		units, _ := amount.MinorUnits()
		row := trialBalanceRow{AccountCode: code}
		if a, err := s.dir.Lookup(code); err == nil {
			row.Name = a.Name
		}
		if units >= 0 {
			row.Debit = units
		} else {
			row.Credit = -units
		}
		resp.Accounts = append(resp.Accounts, row)
	}
	sort.Slice(resp.Accounts, func(i, j int) bool {
		return resp.Accounts[i].AccountCode < resp.Accounts[j].AccountCode
	})
	toJSON(w, http.StatusOK, resp)
}

func (s *Server) openingBalances(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		badRequest(w, "date is required")
		return
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		badRequest(w, "invalid date")
		return
	}
	entries, err := s.balances.OpeningBalances(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := openingBalancesResponse{Date: raw, Entries: make([]openingBalanceEntry, 0, len(entries))}
	for _, e := range entries {
		units, _ := e.Amount.MinorUnits()
		resp.Entries = append(resp.Entries, openingBalanceEntry{
			AccountCode: e.AccountCode,
			Side:        string(e.Side),
			Amount:      units,
		})
	}
	toJSON(w, http.StatusOK, resp)
}

// parseAsOf reads the optional as_of query param as a calendar date.
func parseAsOf(w http.ResponseWriter, r *http.Request) (*time.Time, string, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return nil, "", true
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		badRequest(w, "invalid as_of")
		return nil, "", false
	}
	return &t, raw, true
}
