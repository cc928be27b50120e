package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/kanriworks/ledger/internal/backup"
	"github.com/kanriworks/ledger/internal/code"
	"github.com/kanriworks/ledger/internal/ledger"
)

func (s *Server) listUnitOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := s.masters.UnitOwners(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]backup.UnitOwnerRecord, 0, len(owners))
	for _, u := range owners {
		out = append(out, backup.UnitOwnerRecord(u))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) putUnitOwner(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	unitNumber := chi.URLParam(r, "unitNumber")
	if !code.IsBusinessCode(unitNumber) {
		badRequest(w, "invalid unit number")
		return
	}
	var req unitOwnerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.OwnerName == "" {
		badRequest(w, "ownerName is required")
		return
	}
	u := ledger.UnitOwner{
		UnitNumber:    unitNumber,
		OwnerName:     req.OwnerName,
		Floor:         req.Floor,
		Area:          req.Area,
		ManagementFee: req.ManagementFee,
		RepairReserve: req.RepairReserve,
	}
	if err := s.masters.UpsertUnitOwner(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}
	toJSON(w, http.StatusOK, backup.UnitOwnerRecord(u))
}

func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := s.masters.Vendors(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]backup.VendorRecord, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, backup.VendorRecord(v))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) putVendor(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	vendorCode := chi.URLParam(r, "code")
	if !code.IsBusinessCode(vendorCode) {
		badRequest(w, "invalid vendor code")
		return
	}
	var req vendorRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		badRequest(w, "vendorName is required")
		return
	}
	v := ledger.Vendor{Code: vendorCode, Name: req.Name, Category: req.Category}
	if err := s.masters.UpsertVendor(r.Context(), v); err != nil {
		writeDomainError(w, err)
		return
	}
	toJSON(w, http.StatusOK, backup.VendorRecord(v))
}
