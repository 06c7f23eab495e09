package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"attendance-platform/internal/attendance"
	"attendance-platform/pkg/utils"
)

// PostgresRepo persists timestamp edits against access_logs and
// access_log_edits.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) FindAccessLog(ctx context.Context, organizationID, accessLogID string) (attendance.Entry, bool, error) {
	const q = `
SELECT id, organization_id, employee_id, kind, timestamp, auto_generated, edited_by_admin, edited_at, edited_by, created_at
FROM access_logs
WHERE organization_id = $1 AND id = $2
`
	var e attendance.Entry
	var editedAt sql.NullTime
	var editedBy sql.NullString
	err := r.db.QueryRowContext(ctx, q, organizationID, accessLogID).Scan(
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
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Entry{}, false, nil
		}
		return attendance.Entry{}, false, err
	}
	if editedAt.Valid {
		t := editedAt.Time
		e.EditedAt = &t
	}
	e.EditedBy = editedBy.String
	return e, true, nil
}

// ApplyEdit runs the two-step commit in one transaction: the edit row is
// inserted first, then the entry is updated. The update re-checks the
// previous timestamp so a concurrent edit of the same entry fails cleanly
// instead of silently overwriting history.
func (r *PostgresRepo) ApplyEdit(ctx context.Context, e Edit, editedAt time.Time) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const insertQ = `
INSERT INTO access_log_edits (
  id, organization_id, access_log_id, admin_id, previous_timestamp, new_timestamp, reason, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
)
`
		if _, err := tx.ExecContext(ctx, insertQ,
			e.ID,
			e.OrganizationID,
			e.AccessLogID,
			e.AdminID,
			e.PreviousTimestamp,
			e.NewTimestamp,
			e.Reason,
			e.CreatedAt,
		); err != nil {
			return err
		}

		const updateQ = `
UPDATE access_logs
SET timestamp = $1, edited_by_admin = TRUE, edited_at = $2, edited_by = $3
WHERE organization_id = $4 AND id = $5 AND timestamp = $6
`
		res, err := tx.ExecContext(ctx, updateQ,
			e.NewTimestamp,
			editedAt,
			e.AdminID,
			e.OrganizationID,
			e.AccessLogID,
			e.PreviousTimestamp,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresRepo) ListEdits(ctx context.Context, organizationID, accessLogID string) ([]Edit, error) {
	const q = `
SELECT id, organization_id, access_log_id, admin_id, previous_timestamp, new_timestamp, reason, created_at
FROM access_log_edits
WHERE organization_id = $1 AND access_log_id = $2
ORDER BY created_at ASC
`
	rows, err := r.db.QueryContext(ctx, q, organizationID, accessLogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Edit, 0)
	for rows.Next() {
		var e Edit
		if err := rows.Scan(
			&e.ID,
			&e.OrganizationID,
			&e.AccessLogID,
			&e.AdminID,
			&e.PreviousTimestamp,
			&e.NewTimestamp,
			&e.Reason,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
