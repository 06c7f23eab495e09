package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"attendance-platform/pkg/utils"
)

// PostgresRepo persists the access ledger.
//
// Assumed tables:
// - employees (locked per registration to serialize the read-decide-write sequence)
// - access_logs
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// WithEmployeeLock serializes registrations per employee by locking the
// employee row FOR UPDATE inside a single transaction. Two concurrent
// registrations for the same employee cannot both read the same ledger
// tail; the loser blocks until the winner commits.
func (r *PostgresRepo) WithEmployeeLock(ctx context.Context, organizationID, employeeID string, fn func(ctx context.Context, tail TailOps) error) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
SELECT id
FROM employees
WHERE organization_id = $1 AND id = $2
FOR UPDATE
`
		var id string
		if err := tx.QueryRowContext(ctx, q, organizationID, employeeID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		return fn(ctx, &txTail{tx: tx, organizationID: organizationID, employeeID: employeeID})
	})
}

type txTail struct {
	tx             *sql.Tx
	organizationID string
	employeeID     string
}

const entryColumns = `id, organization_id, employee_id, kind, timestamp, auto_generated, edited_by_admin, edited_at, edited_by, created_at`

func (t *txTail) LastEntry(ctx context.Context) (Entry, bool, error) {
	const q = `
SELECT ` + entryColumns + `
FROM access_logs
WHERE organization_id = $1 AND employee_id = $2
ORDER BY timestamp DESC, created_at DESC
LIMIT 1
`
	e, err := scanEntry(t.tx.QueryRowContext(ctx, q, t.organizationID, t.employeeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

func (t *txTail) Append(ctx context.Context, e Entry) error {
	const q = `
INSERT INTO access_logs (
  id, organization_id, employee_id, kind, timestamp, auto_generated, edited_by_admin, edited_at, edited_by, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := t.tx.ExecContext(ctx, q,
		e.ID,
		e.OrganizationID,
		e.EmployeeID,
		e.Kind,
		e.Timestamp,
		e.AutoGenerated,
		e.EditedByAdmin,
		e.EditedAt,
		nullIfEmpty(e.EditedBy),
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListRange(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]Entry, error) {
	const q = `
SELECT ` + entryColumns + `
FROM access_logs
WHERE organization_id = $1 AND employee_id = $2
  AND timestamp >= $3 AND timestamp < $4
ORDER BY timestamp ASC, created_at ASC
`
	rows, err := r.db.QueryContext(ctx, q, organizationID, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) LastEntry(ctx context.Context, organizationID, employeeID string) (Entry, bool, error) {
	const q = `
SELECT ` + entryColumns + `
FROM access_logs
WHERE organization_id = $1 AND employee_id = $2
ORDER BY timestamp DESC, created_at DESC
LIMIT 1
`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, organizationID, employeeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry normalizes nullable edit columns into the model so callers
// never see driver-level null types.
func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var editedAt sql.NullTime
	var editedBy sql.NullString
	if err := row.Scan(
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
		return Entry{}, err
	}
	if editedAt.Valid {
		t := editedAt.Time
		e.EditedAt = &t
	}
	e.EditedBy = editedBy.String
	return e, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
