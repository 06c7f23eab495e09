package audit

import "time"

// Edit is an immutable record of one administrative change to an access-log
// entry's timestamp.
//
// Invariants:
// - Edits are never updated or deleted.
// - An edit row is inserted BEFORE the access-log mutation it describes is
//   committed; an entry can never show as edited without a matching edit.
// - Read in CreatedAt order, the edits for one access log reconstruct the
//   entry's full timestamp history.
//
// Storage recommendation (Postgres):
// - Table access_log_edits with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
type Edit struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	// AccessLogID is the entry whose timestamp changed.
	AccessLogID string `json:"access_log_id" db:"access_log_id"`

	// AdminID is the administrator who made the change.
	AdminID string `json:"admin_id" db:"admin_id"`

	PreviousTimestamp time.Time `json:"previous_timestamp" db:"previous_timestamp"`
	NewTimestamp      time.Time `json:"new_timestamp" db:"new_timestamp"`

	// Reason is required free text, at least MinReasonLength characters
	// after trimming.
	Reason string `json:"reason" db:"reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MinReasonLength is the minimum trimmed length of an edit reason.
const MinReasonLength = 10

// EditResult is returned to the caller after a successful timestamp edit.
type EditResult struct {
	PreviousTimestamp time.Time `json:"previous_timestamp"`
	NewTimestamp      time.Time `json:"new_timestamp"`
}
