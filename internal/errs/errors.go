package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrAlreadyPosted indicates a mutating call against a posted journal.
	ErrAlreadyPosted = errors.New("already_posted")
	// ErrCannotDeletePosted indicates a delete attempt on posted history.
	ErrCannotDeletePosted = errors.New("cannot_delete_posted")
	// ErrInvalidTransition is the class matched by TransitionError.
	ErrInvalidTransition = errors.New("invalid_transition")
)

// Chart configuration errors, fatal at startup: the engine refuses to run
// with an inconsistent chart of accounts or division set.
var (
	ErrDuplicateCode   = errors.New("duplicate_account_code")
	ErrDanglingParent  = errors.New("dangling_parent")
	ErrBadLevel        = errors.New("bad_hierarchy_level")
	ErrUnknownDivision = errors.New("unknown_division")
)

// Validation error codes carried by ValidationError.
const (
	CodeInvalidDate        = "invalid_date"
	CodeMissingDescription = "missing_description"
	CodeMissingDetails     = "missing_details"
	CodeTooManyDetails     = "too_many_details"
	CodeAccountNotFound    = "account_not_found"
	CodeNegativeAmount     = "negative_amount"
	CodeAmbiguousSide      = "ambiguous_side"
	CodeDivisionConflict   = "division_conflict"
	CodeMissingDivision    = "missing_division"
	CodeNotBalanced        = "not_balanced"
)

// ValidationError describes a single journal validation failure with
// enough structure for the caller to render a precise message.
type ValidationError struct {
	Code string `json:"code"`
	// Line is the 1-based detail line the error refers to; 0 means the
	// error applies to the journal as a whole.
	Line        int    `json:"line,omitempty"`
	AccountCode string `json:"account_code,omitempty"`
	// Debit and Credit carry the computed totals for not_balanced errors.
	Debit  int64  `json:"debit,omitempty"`
	Credit int64  `json:"credit,omitempty"`
	Detail string `json:"detail"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line[%d]: %s: %s", e.Line, e.Code, e.Detail)
	}
	return e.Code + ": " + e.Detail
}

// ValidationErrors is the ordered list of all failures found in one
// validation pass. It is itself an error.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

// TransitionError reports a lifecycle action that is not allowed from the
// journal's current status. It matches ErrInvalidTransition via errors.Is.
type TransitionError struct {
	Current string
	Action  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s journal", e.Action, e.Current)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
