package directory

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNotFound = errors.New("directory: employee not found")

// Repository is read-mostly employee access, always organization-scoped.
// Implementations must return exactly one well-typed record or ErrNotFound;
// no ambiguous joined shapes leak past this boundary.
type Repository interface {
	FindByFaceToken(ctx context.Context, organizationID, faceToken string) (Employee, error)
	FindByID(ctx context.Context, organizationID, employeeID string) (Employee, error)
	List(ctx context.Context, organizationID string) ([]Employee, error)
}

// PostgresRepo reads from the employees table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const employeeColumns = `id, organization_id, employee_code, display_name, face_token, active, created_at`

func (r *PostgresRepo) FindByFaceToken(ctx context.Context, organizationID, faceToken string) (Employee, error) {
	if organizationID == "" || faceToken == "" {
		return Employee{}, ErrNotFound
	}
	const q = `
SELECT ` + employeeColumns + `
FROM employees
WHERE organization_id = $1 AND face_token = $2
LIMIT 1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, organizationID, faceToken))
}

func (r *PostgresRepo) FindByID(ctx context.Context, organizationID, employeeID string) (Employee, error) {
	if organizationID == "" || employeeID == "" {
		return Employee{}, ErrNotFound
	}
	const q = `
SELECT ` + employeeColumns + `
FROM employees
WHERE organization_id = $1 AND id = $2
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, organizationID, employeeID))
}

func (r *PostgresRepo) List(ctx context.Context, organizationID string) ([]Employee, error) {
	const q = `
SELECT ` + employeeColumns + `
FROM employees
WHERE organization_id = $1
ORDER BY employee_code
`
	rows, err := r.db.QueryContext(ctx, q, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Employee, 0)
	for rows.Next() {
		var e Employee
		if err := rows.Scan(
			&e.ID,
			&e.OrganizationID,
			&e.EmployeeCode,
			&e.DisplayName,
			&e.FaceToken,
			&e.Active,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) scanOne(row *sql.Row) (Employee, error) {
	var e Employee
	if err := row.Scan(
		&e.ID,
		&e.OrganizationID,
		&e.EmployeeCode,
		&e.DisplayName,
		&e.FaceToken,
		&e.Active,
		&e.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
	}
	return e, nil
}
