package journal

import "github.com/kanriworks/ledger/internal/ledger"

// Input is the closed structural form a proposed journal arrives in.
// Amounts are raw numbers as supplied by the caller; validation coerces
// them to whole yen.
type Input struct {
	// Date in YYYY-MM-DD form.
	Date        string
	Description string
	Reference   string
	// Division is optional; when empty it is inferred from the touched
	// accounts during validation.
	Division ledger.DivisionCode
	Metadata map[string]string
	Details  []DetailInput
}

// DetailInput is one proposed line item. Exactly one of Debit or Credit
// must be nonzero.
type DetailInput struct {
	AccountCode string
	Debit       float64
	Credit      float64
	Note        string
}
