package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kanriworks/ledger/internal/ledger"
	"github.com/kanriworks/ledger/internal/service/journal"
)

// postJournal creates a journal, optionally auto-posting it. When an
// Idempotency-Key header is present, a repeated request returns the
// journal created by the first one.
func (s *Server) postJournal(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" {
		if prev, ok, err := s.idem.ResolveJournalByIdempotencyKey(r.Context(), idemKey); err == nil && ok {
			toJSON(w, http.StatusOK, toJournalResponse(prev))
			return
		}
	}

	var req postJournalRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	in := journal.Input{
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		Division:    ledger.DivisionCode(req.Division),
		Metadata:    req.Metadata,
	}
	for _, d := range req.Details {
		in.Details = append(in.Details, journal.DetailInput{
			AccountCode: d.AccountCode,
			Debit:       d.DebitAmount,
			Credit:      d.CreditAmount,
			Note:        d.Note,
		})
	}

	created, err := s.journals.Create(r.Context(), in, req.AutoPost)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if idemKey != "" {
		if err := s.idem.SaveJournalIdempotencyKey(r.Context(), idemKey, created.ID); err != nil {
			s.log.Error("save idempotency key", "err", err)
		}
	}
	toJSON(w, http.StatusCreated, toJournalResponse(created))
}

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	journals, err := s.journals.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := listJournalsResponse{Items: make([]journalResponse, 0, len(journals))}
	if status := r.URL.Query().Get("status"); status != "" {
		for _, j := range journals {
			if string(j.Status) == status {
				resp.Items = append(resp.Items, toJournalResponse(j))
			}
		}
	} else {
		for _, j := range journals {
			resp.Items = append(resp.Items, toJournalResponse(j))
		}
	}
	toJSON(w, http.StatusOK, resp)
}

func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJournalID(w, r)
	if !ok {
		return
	}
	j, err := s.journals.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toJournalResponse(j))
}

// journalAction wraps one lifecycle operation as a handler.
func (s *Server) journalAction(op func(context.Context, uuid.UUID) (ledger.Journal, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJournalID(w, r)
		if !ok {
			return
		}
		j, err := op(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		toJSON(w, http.StatusOK, toJournalResponse(j))
	}
}

func (s *Server) deleteJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJournalID(w, r)
	if !ok {
		return
	}
	if err := s.journals.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseJournalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid journal id")
		return uuid.Nil, false
	}
	return id, true
}
