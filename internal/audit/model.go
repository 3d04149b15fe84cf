package audit

import (
	"encoding/json"
	"time"
)

// Action enumerates journal audit actions.
type Action string

const (
	ActionCreate        Action = "create"
	ActionEdit          Action = "edit"
	ActionPost          Action = "post"
	ActionRevertToDraft Action = "revert_to_draft"
	ActionPrint         Action = "print"
	ActionDelete        Action = "delete"
)

// Record adalah satu baris journal_audit. Baris tidak pernah diubah atau dihapus.
type Record struct {
	ID        int64           `json:"id"`
	JournalID int64           `json:"journal_id"`
	Action    Action          `json:"action"`
	UserID    *int64          `json:"user_id,omitempty"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord membuat record audit dengan snapshot before/after dalam bentuk JSON.
func NewRecord(journalID int64, action Action, userID *int64, before, after any, at time.Time) (Record, error) {
	rec := Record{JournalID: journalID, Action: action, UserID: userID, CreatedAt: at}
	var err error
	if rec.Before, err = marshalSnapshot(before); err != nil {
		return Record{}, err
	}
	if rec.After, err = marshalSnapshot(after); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func marshalSnapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}
