package directory

import "time"

// Employee is the enrollment record mapping a face token to a person.
//
// Invariants:
// - EmployeeCode is unique per organization (human-assigned).
// - FaceToken resolves to at most one employee within an organization.
// - Created at enrollment; this service only reads it.
type Employee struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	EmployeeCode string `json:"employee_code" db:"employee_code"`
	DisplayName  string `json:"display_name" db:"display_name"`

	// FaceToken is the opaque identity issued by the external face provider.
	// Never log it.
	FaceToken string `json:"-" db:"face_token"`

	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
