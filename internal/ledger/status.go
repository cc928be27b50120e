package ledger

// Action names a lifecycle operation applied to a journal.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionPost    Action = "post"
	ActionRevert  Action = "revert"
)

// transitions is the single authoritative table of allowed status moves.
// Posting is reachable from draft (direct posting, the bulk/import path)
// and from approved (the full approval path). Revert sends a journal back
// to draft from either intermediate state. Posted has no outgoing edges.
var transitions = map[JournalStatus]map[Action]JournalStatus{
	StatusDraft: {
		ActionSubmit: StatusSubmitted,
		ActionPost:   StatusPosted,
	},
	StatusSubmitted: {
		ActionApprove: StatusApproved,
		ActionRevert:  StatusDraft,
	},
	StatusApproved: {
		ActionPost:   StatusPosted,
		ActionRevert: StatusDraft,
	},
	StatusPosted: {},
}

// Next returns the status reached by applying action to s, or false when
// the move is not allowed.
func (s JournalStatus) Next(action Action) (JournalStatus, bool) {
	to, ok := transitions[s][action]
	return to, ok
}
