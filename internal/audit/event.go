package audit

import "time"

// Action is the semantic kind of an audit event. Ref-level events use
// CREATED/REMOVED; file-level events use ADDED/MODIFIED/DELETED.
type Action string

const (
	ActionCreated  Action = "CREATED"
	ActionRemoved  Action = "REMOVED"
	ActionAdded    Action = "ADDED"
	ActionModified Action = "MODIFIED"
	ActionDeleted  Action = "DELETED"
)

// ActionForCode maps a single-letter name-status code to an action.
// Codes without a mapping (renames, copies, type changes) pass through
// as the raw letter so no information is dropped.
func ActionForCode(code byte) Action {
	switch code {
	case 'A':
		return ActionAdded
	case 'M':
		return ActionModified
	case 'D':
		return ActionDeleted
	default:
		return Action(string(code))
	}
}

// Event is one audit record: either a ref-level create/remove, where
// File holds the ref name and Commit/Author are empty, or a file-level
// change within a comparison range.
type Event struct {
	Action Action
	File   string
	Commit string
	Author string
}

// SessionContext holds the environment-derived fields shared by every
// record of one push. Captured once at startup, read-only afterwards.
type SessionContext struct {
	Time     time.Time
	User     string
	ClientIP string
	RepoPath string
	Host     string
}
