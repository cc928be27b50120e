package httpapi

import (
	"time"

	"github.com/kanriworks/ledger/internal/ledger"
)

type postJournalRequest struct {
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Reference   string            `json:"reference,omitempty"`
	Division    string            `json:"division,omitempty"`
	AutoPost    bool              `json:"autoPost,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Details     []detailRequest   `json:"details"`
}

type detailRequest struct {
	AccountCode  string  `json:"accountCode"`
	DebitAmount  float64 `json:"debitAmount,omitempty"`
	CreditAmount float64 `json:"creditAmount,omitempty"`
	Note         string  `json:"note,omitempty"`
}

type journalResponse struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Reference   string            `json:"reference,omitempty"`
	Division    string            `json:"division,omitempty"`
	Status      string            `json:"status"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Details     []detailResponse  `json:"details"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type detailResponse struct {
	AccountCode string `json:"accountCode"`
	Side        string `json:"side"`
	Amount      int64  `json:"amount"`
	Note        string `json:"note,omitempty"`
}

type listJournalsResponse struct {
	Items []journalResponse `json:"items"`
}

type accountResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ShortName  string `json:"shortName,omitempty"`
	Class      string `json:"class"`
	Level      int    `json:"level"`
	ParentCode string `json:"parentCode,omitempty"`
	Postable   bool   `json:"postable"`
	Division   string `json:"division"`
	NormalSide string `json:"normalSide"`
}

type divisionResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type balanceResponse struct {
	AccountCode string `json:"accountCode"`
	Balance     int64  `json:"balance"`
	AsOf        string `json:"asOf,omitempty"`
}

type trialBalanceRow struct {
	AccountCode string `json:"accountCode"`
	Name        string `json:"name"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

type trialBalanceResponse struct {
	AsOf     string            `json:"asOf,omitempty"`
	Accounts []trialBalanceRow `json:"accounts"`
}

type openingBalanceEntry struct {
	AccountCode string `json:"accountCode"`
	Side        string `json:"side"`
	Amount      int64  `json:"amount"`
}

type openingBalancesResponse struct {
	Date    string                `json:"date"`
	Entries []openingBalanceEntry `json:"entries"`
}

type unitOwnerRequest struct {
	OwnerName     string  `json:"ownerName"`
	Floor         int     `json:"floor,omitempty"`
	Area          float64 `json:"area,omitempty"`
	ManagementFee int64   `json:"managementFee,omitempty"`
	RepairReserve int64   `json:"repairReserve,omitempty"`
}

type vendorRequest struct {
	Name     string `json:"vendorName"`
	Category string `json:"category,omitempty"`
}

func toJournalResponse(j ledger.Journal) journalResponse {
	resp := journalResponse{
		ID:          j.ID.String(),
		Date:        j.Date.Format("2006-01-02"),
		Description: j.Description,
		Reference:   j.Reference,
		Division:    string(j.Division),
		Status:      string(j.Status),
		Details:     make([]detailResponse, 0, len(j.Details)),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if len(j.Metadata) > 0 {
		resp.Metadata = map[string]string(j.Metadata.Clone())
	}
	for _, d := range j.Details {
		units, _ := d.Amount.MinorUnits()
		resp.Details = append(resp.Details, detailResponse{
			AccountCode: d.AccountCode,
			Side:        string(d.Side),
			Amount:      units,
			Note:        d.Note,
		})
	}
	return resp
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		Code:       a.Code,
		Name:       a.Name,
		ShortName:  a.ShortName,
		Class:      string(a.Class),
		Level:      a.Level,
		ParentCode: a.ParentCode,
		Postable:   a.Postable,
		Division:   string(a.Division),
		NormalSide: string(a.NormalSide()),
	}
}
