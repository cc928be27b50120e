package httpapi

import (
	"net/http"

	"github.com/kanriworks/ledger/internal/backup"
)

// getBackup streams the full-fidelity backup document.
func (s *Server) getBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := s.codec.Export(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := doc.Encode(w); err != nil {
		s.log.Error("encode backup", "err", err)
	}
}

// postRestore replaces engine state verbatim from a backup document.
func (s *Server) postRestore(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	doc, err := backup.DecodeDocument(r.Body)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.codec.Restore(r.Context(), doc); err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "restore_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postImport applies an import document with partial-success semantics
// and returns the per-journal summary.
func (s *Server) postImport(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	doc, err := backup.DecodeImport(r.Body)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sum, err := s.codec.Import(r.Context(), doc)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, err.Error(), "import_failed")
		return
	}
	toJSON(w, http.StatusOK, sum)
}
