package attendance

import (
	"fmt"
	"time"
)

// Entry is one access-log row: a single check-in or check-out.
//
// Invariants:
// - Entries are append-mostly: created here, never deleted, and mutated only
//   through the audit edit path (timestamp + edited_* flags).
// - Per employee, entries are totally ordered by Timestamp; consecutive
//   entries alternate kind except where an auto-generated close repairs a
//   cross-day violation.
// - organization_id is required for tenancy isolation.
type Entry struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`
	EmployeeID     string `json:"employee_id" db:"employee_id"`

	Kind ActionKind `json:"kind" db:"kind"`

	// Timestamp is stored as a UTC instant; the organization zone only
	// matters for day-boundary decisions and display.
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	// AutoGenerated marks entries synthesized by the cross-day
	// reconciliation rule. Humans never set this.
	AutoGenerated bool `json:"auto_generated" db:"auto_generated"`

	EditedByAdmin bool       `json:"edited_by_admin" db:"edited_by_admin"`
	EditedAt      *time.Time `json:"edited_at,omitempty" db:"edited_at"`
	EditedBy      string     `json:"edited_by,omitempty" db:"edited_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ActionKind string

const (
	KindCheckIn  ActionKind = "check_in"
	KindCheckOut ActionKind = "check_out"
)

func (k ActionKind) Valid() bool {
	return k == KindCheckIn || k == KindCheckOut
}

// Opposite returns the other action kind.
func (k ActionKind) Opposite() ActionKind {
	if k == KindCheckIn {
		return KindCheckOut
	}
	return KindCheckIn
}

// RegisterResult is the outcome of a successful registration.
type RegisterResult struct {
	Entry Entry `json:"entry"`

	// AutoCloseGenerated is true when a synthetic check-out was inserted
	// before the requested entry.
	AutoCloseGenerated bool `json:"auto_close_generated"`
}

// DuplicateActionError is the expected business outcome when the requested
// kind equals the employee's last recorded kind. It carries enough context
// for the caller to explain the rejection without an extra lookup.
type DuplicateActionError struct {
	Kind          ActionKind
	LastTimestamp time.Time

	// LastLocal is the last action's timestamp rendered in the
	// organization zone, for user-facing messages.
	LastLocal string
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("attendance: duplicate %s; last action at %s", e.Kind, e.LastLocal)
}
