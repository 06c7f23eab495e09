package reporting

import (
	"context"
	"database/sql"
	"time"

	"attendance-platform/internal/attendance"
)

// PostgresRepo reads access logs for aggregation.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListAccessLogs(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]attendance.Entry, error) {
	const q = `
SELECT id, organization_id, employee_id, kind, timestamp, auto_generated, edited_by_admin, edited_at, edited_by, created_at
FROM access_logs
WHERE organization_id = $1 AND employee_id = $2
  AND timestamp >= $3 AND timestamp < $4
ORDER BY timestamp ASC
`
	rows, err := r.db.QueryContext(ctx, q, organizationID, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]attendance.Entry, 0)
	for rows.Next() {
		var e attendance.Entry
		var editedAt sql.NullTime
		var editedBy sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.OrganizationID,
			&e.EmployeeID,
			&e.Kind,
			&e.Timestamp,
			&e.AutoGenerated,
			&e.EditedByAdmin,
			&editedAt,
			&editedBy,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if editedAt.Valid {
			t := editedAt.Time
			e.EditedAt = &t
		}
		e.EditedBy = editedBy.String
		out = append(out, e)
	}
	return out, rows.Err()
}
